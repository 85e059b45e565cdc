package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Confirmation is one vouching entry.
type Confirmation struct {
	ReportID   int64     `db:"report_id" yaml:"report_id"`
	ReporterID int64     `db:"reporter_id" yaml:"reporter_id"`
	CreatedAt  time.Time `db:"created_at" yaml:"created_at"`
}

// Snapshot is a full dump of the store.
type Snapshot struct {
	TakenAt       time.Time      `yaml:"taken_at"`
	Operators     []Operator     `yaml:"operators"`
	Reporters     []Reporter     `yaml:"reporters"`
	Reports       []Report       `yaml:"reports"`
	Confirmations []Confirmation `yaml:"confirmations"`
}

// Snapshot reads every table in one transaction.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{TakenAt: s.timestamp()}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return snap, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := []struct {
		dst   any
		query string
	}{
		{&snap.Operators, `SELECT id, first_name, last_name, username, is_super, created_at FROM operators ORDER BY id`},
		{&snap.Reporters, `SELECT id, first_name, last_name, username, created_at FROM reporters ORDER BY id`},
		{&snap.Reports, `SELECT ` + reportColumns + ` FROM reports r ORDER BY r.id`},
		{&snap.Confirmations, `SELECT report_id, reporter_id, created_at FROM report_confirmations ORDER BY report_id, reporter_id`},
	}
	for _, q := range queries {
		if err := tx.SelectContext(ctx, q.dst, q.query); err != nil {
			return snap, fmt.Errorf("snapshot: %w", err)
		}
	}
	return snap, nil
}

// WriteSnapshot encodes the store as YAML to w.
func (s *Store) WriteSnapshot(ctx context.Context, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}
