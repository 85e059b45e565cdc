package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/trustbot/core/logger"
)

const (
	connectAttemptTimeout = 5 * time.Second
	connectRetryDelay     = 2 * time.Second
)

// Connect opens the database, retrying until it answers a ping or wait elapses,
// and configures the pool. The sqlite pool is capped at one connection so
// writers never contend for the file lock.
func Connect(ctx context.Context, cfg Config, wait time.Duration) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	start := time.Now()
	target := []slog.Attr{
		slog.String("driver", cfg.Driver),
		slog.String("db", cfg.Target()),
	}

	var (
		db      *sqlx.DB
		lastErr error
		attempt int
	)
	for {
		attempt++
		db, lastErr = open(ctx, cfg)
		if lastErr == nil {
			break
		}
		if time.Since(start) >= wait || ctx.Err() != nil {
			logger.Error(ctx, logger.CompDB, "db.connect",
				append(target,
					slog.String("status", "fail"),
					slog.Int("attempts", attempt),
					slog.Duration("duration", logger.Took(start)),
					logger.Err(lastErr),
				)...,
			)
			return nil, fmt.Errorf("db connect: %w", lastErr)
		}
		logger.Warn(ctx, logger.CompDB, "db.connect",
			append(target,
				slog.String("status", "retry"),
				slog.Int("attempts", attempt),
				slog.Duration("backoff", connectRetryDelay),
				logger.Err(lastErr),
			)...,
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect: %w", ctx.Err())
		case <-time.After(connectRetryDelay):
		}
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.Info(ctx, logger.CompDB, "db.connect",
		append(target,
			slog.String("status", "ok"),
			slog.Int("pool_open", cfg.MaxConnections),
			slog.Int("attempts", attempt),
			slog.Duration("duration", logger.Took(start)),
		)...,
	)
	return db, nil
}

func open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, connectAttemptTimeout)
	defer cancel()
	// sqlx.ConnectContext pings and closes the handle on failure.
	return sqlx.ConnectContext(attemptCtx, cfg.Driver, cfg.DSN())
}
