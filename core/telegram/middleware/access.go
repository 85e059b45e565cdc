package middleware

import (
	"log/slog"

	"github.com/m3rciful/trustbot/core/logger"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AccessResolver reports the privilege level of the update's sender.
// Level 0 is everyone; higher numbers are more privileged.
type AccessResolver interface {
	AccessLevel(c tele.Context) (int, error)
}

// AccessResolverFunc adapts a function to AccessResolver.
type AccessResolverFunc func(c tele.Context) (int, error)

// AccessLevel implements AccessResolver.
func (f AccessResolverFunc) AccessLevel(c tele.Context) (int, error) { return f(c) }

// AccessOptions defines how gated handlers behave.
type AccessOptions struct {
	Resolver AccessResolver
	// OnReject runs instead of the handler when the sender is below the required level.
	OnReject tele.HandlerFunc
}

// RequireLevel wraps handlers so they only run for senders at or above level.
// Level 0 and a nil resolver pass everything through.
func RequireLevel(opts AccessOptions, level int) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if level <= 0 || opts.Resolver == nil {
			return next
		}
		return func(c tele.Context) error {
			have, err := opts.Resolver.AccessLevel(c)
			if err != nil {
				return err
			}
			if have >= level {
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), logger.CompTG, "access.denied",
				slog.String("status", "denied"),
				slog.Int("role", have),
				slog.Int("required", level),
			)
			c.Set("access_denied", true)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

// Denied reports whether RequireLevel rejected the current update.
func Denied(c tele.Context) bool {
	v, _ := c.Get("access_denied").(bool)
	return v
}
