package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/trustbot/core/logger"
)

// Seeder loads bootstrap data once the schema is in place.
type Seeder interface {
	Seed(ctx context.Context, db *sqlx.DB) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, db *sqlx.DB) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, db *sqlx.DB) error {
	return f(ctx, db)
}

func runSeeders(ctx context.Context, db *sqlx.DB, seeders []Seeder) error {
	for i, s := range seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx, db); err != nil {
			logger.Error(ctx, logger.CompDB, "db.seed",
				slog.Int("seeder", i),
				logger.Err(err),
			)
			return fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
	}
	if len(seeders) > 0 {
		logger.Info(ctx, logger.CompDB, "db.seed", slog.Int("count", len(seeders)))
	}
	return nil
}
