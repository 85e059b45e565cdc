package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/trustbot/core/logger"
	tg "github.com/m3rciful/trustbot/core/telegram"
	"github.com/m3rciful/trustbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are gated.
type CommandRouteOptions struct {
	Access middleware.AccessOptions
}

// CommandRoutes binds every registered command and alias, each gated by the
// command's level.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	entries := reg.Entries()
	routes := make([]tg.Route, 0, len(entries))
	for _, e := range entries {
		name := normalizeHandlerName(e.Name)
		gated := middleware.RequireLevel(opts.Access, e.Level)(e.Handler)
		h := func(c tele.Context) error {
			return handleWithSummary(c, name, func() error { return gated(c) })
		}
		routes = append(routes, tg.Route{Endpoint: e.Name, Handler: h})
		for _, alias := range e.Aliases {
			if alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.Info(context.Background(), logger.CompWire, "complete",
		slog.Int("commands", len(entries)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
