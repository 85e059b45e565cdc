package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/trustbot/core/logger"
)

// TouchOperator looks up who as an operator and refreshes the stored
// display name when found.
func (s *Store) TouchOperator(ctx context.Context, who Identity) (Operator, bool, error) {
	var (
		op    Operator
		found bool
	)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE operators SET first_name = ?, last_name = ?, username = ?
			WHERE id = ?`),
			who.FirstName, who.LastName, who.Username, who.ID)
		if err != nil {
			return fmt.Errorf("refresh operator: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		if err := tx.GetContext(ctx, &op, s.q(`
			SELECT id, first_name, last_name, username, is_super, created_at
			FROM operators WHERE id = ?`), who.ID); err != nil {
			return fmt.Errorf("load operator: %w", err)
		}
		found = true
		return nil
	})
	return op, found, err
}

// AddOperator registers who as an operator. It returns false when who
// already is one.
func (s *Store) AddOperator(ctx context.Context, who Identity, super bool) (bool, error) {
	var added bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO operators (id, first_name, last_name, username, is_super, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`),
			who.ID, who.FirstName, who.LastName, who.Username, super, s.timestamp())
		if err != nil {
			return fmt.Errorf("insert operator: %w", err)
		}
		n, _ := res.RowsAffected()
		added = n > 0
		return nil
	})
	if err == nil && added {
		logger.Info(ctx, logger.CompStore, "operator.added",
			slog.Int64("operator_id", who.ID),
			slog.Bool("super", super),
		)
	}
	return added, err
}

// RemoveOperator deletes a regular operator. Super operators are protected.
func (s *Store) RemoveOperator(ctx context.Context, id int64) (RemoveResult, error) {
	result := OperatorNotFound
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var super bool
		err := tx.GetContext(ctx, &super, s.q(`SELECT is_super FROM operators WHERE id = ?`), id)
		switch {
		case isNoRows(err):
			return nil
		case err != nil:
			return fmt.Errorf("load operator: %w", err)
		case super:
			result = OperatorProtected
			return nil
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM operators WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete operator: %w", err)
		}
		result = OperatorRemoved
		return nil
	})
	if err == nil && result == OperatorRemoved {
		logger.Info(ctx, logger.CompStore, "operator.removed", slog.Int64("operator_id", id))
	}
	return result, err
}

// SeedOperators makes every id a super operator, creating missing rows.
func (s *Store) SeedOperators(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO operators (id, is_super, created_at) VALUES (?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET is_super = excluded.is_super`),
				id, true, s.timestamp()); err != nil {
				return fmt.Errorf("seed operator %d: %w", id, err)
			}
		}
		logger.Info(ctx, logger.CompStore, "operators.seeded", slog.Int("count", len(ids)))
		return nil
	})
}
