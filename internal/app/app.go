// Package app wires configuration, storage and the bot into a runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/trustbot/core/bootstrap"
	"github.com/m3rciful/trustbot/core/logger"
	tg "github.com/m3rciful/trustbot/core/telegram"
	"github.com/m3rciful/trustbot/core/telegram/router"
	"github.com/m3rciful/trustbot/core/telegram/state"
	"github.com/m3rciful/trustbot/internal/analytics"
	"github.com/m3rciful/trustbot/internal/bot"
	"github.com/m3rciful/trustbot/internal/config"
	"github.com/m3rciful/trustbot/internal/roles"
	"github.com/m3rciful/trustbot/internal/search"
	"github.com/m3rciful/trustbot/internal/store"
	"github.com/m3rciful/trustbot/migrations"
)

// App is the assembled trust-report bot.
type App struct {
	cfg     *config.Config
	db      *sqlx.DB
	bot     *bot.Bot
	tracker analytics.Tracker
}

// Bootstrap connects to the database, migrates it, seeds the configured
// super operators and builds the bot.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	res, err := prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st := store.New(res.DB, res.Driver)
	tracker := newTracker(cfg.Analytics)
	b := bot.New(st, roles.NewGate(st), search.NewEngine(st, cfg.Bot.ExportLimit), tracker, bot.Options{
		Sessions: state.Options{
			TTL:      cfg.Bot.SessionTTL,
			Capacity: cfg.Bot.SessionCapacity,
		},
		SearchWindow: cfg.Bot.SearchWindow,
	})

	logger.Info(ctx, logger.CompApp, "bootstrap",
		slog.String("driver", res.Driver),
		slog.Bool("analytics", cfg.Analytics.Enabled),
		slog.Int("count", len(cfg.Bot.SuperOperatorIDs)),
	)
	return &App{cfg: cfg, db: res.DB, bot: b, tracker: tracker}, nil
}

// Migrate applies pending migrations and seeds super operators, then closes
// the connection.
func Migrate(ctx context.Context, cfg *config.Config) error {
	res, err := prepare(ctx, cfg)
	if err != nil {
		return err
	}
	return res.DB.Close()
}

func prepare(ctx context.Context, cfg *config.Config) (*bootstrap.Result, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	ids := []int64(cfg.Bot.SuperOperatorIDs)
	return bootstrap.Run(ctx, bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: migrations.FS,
		Seeders: []bootstrap.Seeder{
			bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
				return store.New(db, cfg.Database.Driver).SeedOperators(ctx, ids)
			}),
		},
	})
}

func newTracker(cfg config.AnalyticsConfig) analytics.Tracker {
	if !cfg.Enabled {
		return analytics.Nop{}
	}
	return analytics.NewHTTPTracker(analytics.Options{
		Endpoint: cfg.Endpoint,
		Token:    cfg.Token,
		Timeout:  cfg.Timeout,
	})
}

// TelegramRunOptions builds the registry, middleware chain and routes.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := a.bot.Register(reg); err != nil {
		return tg.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}

	core := a.cfg.CoreConfig()
	mws := append(tg.DefaultMiddlewares(core, a.bot.RateLimited()),
		tg.Middleware{Name: "serialize", Use: state.Serialize(state.NewLocker())},
	)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{Access: a.bot.AccessOptions()})
	routes = append(routes, router.MessageRoutes(a.bot, router.MessageOptions{Fallback: a.bot})...)
	routes = append(routes, router.CallbackRoute(reg))

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
	}, nil
}

// Close flushes analytics and closes the database.
func (a *App) Close() error {
	var errs []error
	if c, ok := a.tracker.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
