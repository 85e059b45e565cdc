package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/trustbot/core/config"
	coredatabase "github.com/m3rciful/trustbot/core/database"
	"github.com/m3rciful/trustbot/migrations"
)

func testOptions(t *testing.T) Options {
	return Options{
		Config: &coreconfig.Config{},
		Database: coredatabase.Config{
			Driver: coredatabase.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "boot.sqlite"),
		},
		Migrations: migrations.FS,
		LoggerInit: func(*coreconfig.Config) error { return nil },
	}
}

func TestRunMigratesAndSeeds(t *testing.T) {
	opts := testOptions(t)
	seeded := 0
	opts.Seeders = []Seeder{
		nil,
		SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
			seeded++
			_, err := db.ExecContext(ctx, `INSERT INTO operators (id, is_super) VALUES (1, 1)`)
			return err
		}),
	}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.DB.Close() })
	require.Equal(t, coredatabase.DriverSQLite, res.Driver)
	require.Equal(t, 1, seeded)

	var n int
	require.NoError(t, res.DB.Get(&n, `SELECT COUNT(*) FROM operators`))
	require.Equal(t, 1, n)

	// A second run finds nothing to migrate.
	require.NoError(t, coredatabase.RunMigrations(context.Background(), res.DB, res.Driver, migrations.FS))
}

func TestRunStopsOnSeederError(t *testing.T) {
	opts := testOptions(t)
	boom := errors.New("boom")
	opts.Seeders = []Seeder{SeederFunc(func(context.Context, *sqlx.DB) error { return boom })}

	_, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, boom)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	require.Error(t, err)
}
