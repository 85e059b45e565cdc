// Package store persists operators, reporters, reports and confirmations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	coredatabase "github.com/m3rciful/trustbot/core/database"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the report store backed by postgres or sqlite.
type Store struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

// New wraps an open, migrated database.
func New(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: time.Now}
}

// withTx executes fn within a transaction. If fn returns an error the
// transaction is rolled back; otherwise it is committed.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// q rebinds a query written with ? placeholders for the active driver.
func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// contains renders a case-sensitive substring test of col against one argument.
func (s *Store) contains(col string) string {
	if s.driver == coredatabase.DriverPostgres {
		return "strpos(COALESCE(" + col + ", ''), ?) > 0"
	}
	return "instr(COALESCE(" + col + ", ''), ?) > 0"
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// SetClock replaces the time source; tests use it to model clock skew.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
