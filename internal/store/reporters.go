package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TouchReporter refreshes the display name of a known reporter and reports
// whether who is one.
func (s *Store) TouchReporter(ctx context.Context, who Identity) (bool, error) {
	var found bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		found, err = s.refreshReporter(ctx, tx, who)
		return err
	})
	return found, err
}

func (s *Store) refreshReporter(ctx context.Context, tx *sqlx.Tx, who Identity) (bool, error) {
	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE reporters SET first_name = ?, last_name = ?, username = ?
		WHERE id = ?`),
		who.FirstName, who.LastName, who.Username, who.ID)
	if err != nil {
		return false, fmt.Errorf("refresh reporter: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ensureReporter refreshes or creates the reporter row for who and reports
// whether it was created.
func (s *Store) ensureReporter(ctx context.Context, tx *sqlx.Tx, who Identity) (bool, error) {
	found, err := s.refreshReporter(ctx, tx, who)
	if err != nil || found {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO reporters (id, first_name, last_name, username, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		who.ID, who.FirstName, who.LastName, who.Username, s.timestamp()); err != nil {
		return false, fmt.Errorf("insert reporter: %w", err)
	}
	return true, nil
}
