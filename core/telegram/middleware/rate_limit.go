package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/m3rciful/trustbot/core/logger"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const (
	limiterCapacity = 10000
	limiterIdle     = 10 * time.Minute
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Interval is the refill period of one token.
	Interval time.Duration
	Burst    int
	// Exclude lists update kinds ("message", "callback") that bypass the limiter.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

type limiterSet struct {
	mu    sync.Mutex
	every rate.Limit
	burst int
	users *expirable.LRU[int64, *rate.Limiter]
}

func (s *limiterSet) allow(userID int64) bool {
	s.mu.Lock()
	lim, ok := s.users.Get(userID)
	if !ok {
		lim = rate.NewLimiter(s.every, s.burst)
		s.users.Add(userID, lim)
	}
	s.mu.Unlock()
	return lim.Allow()
}

// RateLimitMiddleware returns a per-user token bucket limiter. Idle users
// are forgotten after a while so the table stays bounded.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	set := &limiterSet{
		every: rate.Every(opts.Interval),
		burst: opts.Burst,
		users: expirable.NewLRU[int64, *rate.Limiter](limiterCapacity, nil, limiterIdle),
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if set.allow(user.ID) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), logger.CompTG, "rate_limit",
				slog.String("status", "denied"),
				slog.String("kind", updateKind(c.Update())),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
