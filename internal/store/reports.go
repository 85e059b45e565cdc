package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coredatabase "github.com/m3rciful/trustbot/core/database"
	"github.com/m3rciful/trustbot/core/logger"
)

const reportColumns = `
	r.id, r.created_at, r.phone, r.external_id, r.bank_owner, r.remark,
	r.attachment, r.created_by, r.reported_by,
	(SELECT COUNT(*) FROM report_confirmations c WHERE c.report_id = r.id) AS confirmations`

// CreateReport creates an empty report owned by operatorID and records
// forwardedFrom as its reporter, creating the reporter row when needed.
// The boolean reports whether the reporter was created.
func (s *Store) CreateReport(ctx context.Context, operatorID int64, forwardedFrom Identity) (Report, bool, error) {
	var (
		rep         Report
		newReporter bool
	)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if lock := s.reportsLock(); lock != "" {
			if _, err := tx.ExecContext(ctx, lock); err != nil {
				return fmt.Errorf("lock reports: %w", err)
			}
		}
		var err error
		if newReporter, err = s.ensureReporter(ctx, tx, forwardedFrom); err != nil {
			return err
		}

		created, err := s.nextCreatedAt(ctx, tx)
		if err != nil {
			return err
		}

		var id int64
		if err := tx.GetContext(ctx, &id, s.q(`
			INSERT INTO reports (created_at, created_by, reported_by)
			VALUES (?, ?, ?) RETURNING id`),
			created, operatorID, forwardedFrom.ID); err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
		rep, err = s.getReport(ctx, tx, id)
		return err
	})
	if err != nil {
		return Report{}, false, err
	}
	logger.Info(ctx, logger.CompStore, "report.created",
		slog.Int64("report_id", rep.ID),
		slog.Int64("operator_id", operatorID),
		slog.Bool("new_reporter", newReporter),
	)
	return rep, newReporter, nil
}

// reportsLock serializes report creation so that the id drawn from the
// sequence and the clamped created_at are taken in the same order. The lock
// conflicts only with itself and with writers, never with readers. The
// sqlite pool holds a single connection, which already serializes writers.
func (s *Store) reportsLock() string {
	if s.driver == coredatabase.DriverPostgres {
		return "LOCK TABLE reports IN SHARE ROW EXCLUSIVE MODE"
	}
	return ""
}

// nextCreatedAt returns the current time, clamped so it never precedes the
// newest stored report.
func (s *Store) nextCreatedAt(ctx context.Context, tx *sqlx.Tx) (time.Time, error) {
	now := s.timestamp()
	var last time.Time
	err := tx.GetContext(ctx, &last, s.q(`
		SELECT created_at FROM reports ORDER BY created_at DESC, id DESC LIMIT 1`))
	switch {
	case isNoRows(err):
		return now, nil
	case err != nil:
		return time.Time{}, fmt.Errorf("load newest report: %w", err)
	}
	if last = last.UTC(); now.Before(last) {
		return last, nil
	}
	return now, nil
}

// Report loads one report by id.
func (s *Store) Report(ctx context.Context, id int64) (Report, error) {
	var rep Report
	err := s.db.GetContext(ctx, &rep, s.q(`SELECT `+reportColumns+` FROM reports r WHERE r.id = ?`), id)
	if isNoRows(err) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("load report %d: %w", id, err)
	}
	return rep, nil
}

func (s *Store) getReport(ctx context.Context, tx *sqlx.Tx, id int64) (Report, error) {
	var rep Report
	err := tx.GetContext(ctx, &rep, s.q(`SELECT `+reportColumns+` FROM reports r WHERE r.id = ?`), id)
	if isNoRows(err) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("load report %d: %w", id, err)
	}
	return rep, nil
}

// UpdateField stores value in field of report id.
func (s *Store) UpdateField(ctx context.Context, id int64, field Field, value string) error {
	col, err := field.column()
	if err != nil {
		return err
	}
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`UPDATE reports SET `+col+` = ? WHERE id = ?`), value, id)
		if err != nil {
			return fmt.Errorf("update report %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err == nil {
		logger.Debug(ctx, logger.CompStore, "report.updated",
			slog.Int64("report_id", id),
			slog.String("field", string(field)),
		)
	}
	return err
}

// DeleteReport removes a report and its confirmations. It returns false
// when no such report exists.
func (s *Store) DeleteReport(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM report_confirmations WHERE report_id = ?`), id); err != nil {
			return fmt.Errorf("detach confirmations: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM reports WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete report %d: %w", id, err)
		}
		n, _ := res.RowsAffected()
		deleted = n > 0
		return nil
	})
	if err == nil && deleted {
		logger.Info(ctx, logger.CompStore, "report.deleted", slog.Int64("report_id", id))
	}
	return deleted, err
}

func (s *Store) matchClause() string {
	return s.contains("r.phone") + " OR " +
		s.contains("r.external_id") + " OR " +
		s.contains("r.bank_owner") + " OR " +
		s.contains("r.remark")
}

// FindReport returns the match at the zero-based offset of the newest-first
// ordering. A case-sensitive substring of any text field matches.
func (s *Store) FindReport(ctx context.Context, query string, offset int) (Report, bool, error) {
	if offset < 0 {
		return Report{}, false, nil
	}
	var rep Report
	err := s.db.GetContext(ctx, &rep, s.q(`
		SELECT `+reportColumns+`
		FROM reports r
		WHERE `+s.matchClause()+`
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT 1 OFFSET ?`),
		query, query, query, query, offset)
	if isNoRows(err) {
		return Report{}, false, nil
	}
	if err != nil {
		return Report{}, false, fmt.Errorf("find report: %w", err)
	}
	return rep, true, nil
}

// SearchReports returns up to limit matches, newest first.
func (s *Store) SearchReports(ctx context.Context, query string, limit int) ([]Report, error) {
	var reps []Report
	err := s.db.SelectContext(ctx, &reps, s.q(`
		SELECT `+reportColumns+`
		FROM reports r
		WHERE `+s.matchClause()+`
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`),
		query, query, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}
	return reps, nil
}
