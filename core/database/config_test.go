package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSQLiteDefaults(t *testing.T) {
	cfg := Config{Driver: "SQLite3 ", MaxConnections: 8}
	require.NoError(t, cfg.Normalize())
	require.Equal(t, DriverSQLite, cfg.Driver)
	require.Equal(t, "trustbot.sqlite", cfg.Path)
	require.Equal(t, 1, cfg.MaxConnections)
	require.Contains(t, cfg.DSN(), "foreign_keys(1)")
}

func TestNormalizePostgres(t *testing.T) {
	cfg := Config{Driver: "postgresql", Host: "db", Name: "trust", User: "u", Password: "p@ss"}
	require.NoError(t, cfg.Normalize())
	require.Equal(t, DriverPostgres, cfg.Driver)
	require.Equal(t, "5432", cfg.Port)
	require.Equal(t, 10, cfg.MaxConnections)
	require.Equal(t, "postgres://u:p%40ss@db:5432/trust?sslmode=disable", cfg.DSN())
	require.Equal(t, "db:5432/trust", cfg.Target())

	require.Error(t, (&Config{Driver: "postgres"}).Normalize())
	require.Error(t, (&Config{Driver: "mysql"}).Normalize())
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_init.up.sql", "000002_idx.up.sql", "000003_more.up.sql"}
	require.Equal(t, []string{"000002_idx.up.sql", "000003_more.up.sql"}, selectApplied(files, 1, 3))
	require.Empty(t, selectApplied(files, 3, 3))
	require.Equal(t, uint64(2), parseVersion("000002_idx.up.sql"))
}
