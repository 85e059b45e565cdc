package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/trustbot/core/logger"
)

// IsConfirmed reports whether reporterID vouches for reportID.
func (s *Store) IsConfirmed(ctx context.Context, reportID, reporterID int64) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`
		SELECT COUNT(*) FROM report_confirmations
		WHERE report_id = ? AND reporter_id = ?`), reportID, reporterID); err != nil {
		return false, fmt.Errorf("load confirmation: %w", err)
	}
	return n > 0, nil
}

// ToggleConfirmation flips who's membership in the vouching set of
// reportID, creating the reporter row when needed.
func (s *Store) ToggleConfirmation(ctx context.Context, reportID int64, who Identity) (Toggle, error) {
	var t Toggle
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, s.q(`SELECT COUNT(*) FROM reports WHERE id = ?`), reportID); err != nil {
			return fmt.Errorf("load report %d: %w", reportID, err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		var err error
		if t.NewReporter, err = s.ensureReporter(ctx, tx, who); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, s.q(`
			DELETE FROM report_confirmations WHERE report_id = ? AND reporter_id = ?`),
			reportID, who.ID)
		if err != nil {
			return fmt.Errorf("remove confirmation: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO report_confirmations (report_id, reporter_id, created_at)
			VALUES (?, ?, ?)`),
			reportID, who.ID, s.timestamp()); err != nil {
			return fmt.Errorf("add confirmation: %w", err)
		}
		t.Confirmed = true
		return nil
	})
	if err == nil {
		logger.Info(ctx, logger.CompStore, "confirmation.toggled",
			slog.Int64("report_id", reportID),
			slog.Bool("confirmed", t.Confirmed),
		)
	}
	return t, err
}
