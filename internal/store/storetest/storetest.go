// Package storetest opens a migrated throwaway store for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	coredatabase "github.com/m3rciful/trustbot/core/database"
	"github.com/m3rciful/trustbot/internal/store"
	"github.com/m3rciful/trustbot/migrations"
)

// OpenDB connects to a fresh sqlite file under t.TempDir and migrates it.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	cfg := coredatabase.Config{
		Driver: coredatabase.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "trustbot.sqlite"),
	}
	db, err := coredatabase.Connect(ctx, cfg, time.Second)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := coredatabase.RunMigrations(ctx, db, coredatabase.DriverSQLite, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Open returns a Store over OpenDB.
func Open(t testing.TB) *store.Store {
	t.Helper()
	return store.New(OpenDB(t), coredatabase.DriverSQLite)
}
