package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/trustbot/core/database"
)

func TestReportsLockPerDriver(t *testing.T) {
	pg := &Store{driver: coredatabase.DriverPostgres}
	require.Equal(t, "LOCK TABLE reports IN SHARE ROW EXCLUSIVE MODE", pg.reportsLock())

	lite := &Store{driver: coredatabase.DriverSQLite}
	require.Empty(t, lite.reportsLock())
}
