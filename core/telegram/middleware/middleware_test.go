package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/trustbot/core/telegram/teletest"
)

var alice = &tele.User{ID: 42, FirstName: "Alice"}

func TestRequireLevel(t *testing.T) {
	levels := map[int64]int{42: 1}
	resolver := AccessResolverFunc(func(c tele.Context) (int, error) {
		return levels[c.Sender().ID], nil
	})
	rejected := 0
	opts := AccessOptions{Resolver: resolver, OnReject: func(tele.Context) error {
		rejected++
		return nil
	}}

	ran := 0
	h := func(tele.Context) error { ran++; return nil }

	c := teletest.Message(1, alice, "/new")
	require.NoError(t, RequireLevel(opts, 1)(h)(c))
	require.Equal(t, 1, ran)
	require.False(t, Denied(c))

	c = teletest.Message(2, alice, "/download_database")
	require.NoError(t, RequireLevel(opts, 2)(h)(c))
	require.Equal(t, 1, ran)
	require.Equal(t, 1, rejected)
	require.True(t, Denied(c))
	require.Empty(t, c.Sent)
}

func TestRequireLevelPropagatesResolverError(t *testing.T) {
	boom := errors.New("db down")
	opts := AccessOptions{Resolver: AccessResolverFunc(func(tele.Context) (int, error) { return 0, boom })}
	err := RequireLevel(opts, 1)(func(tele.Context) error { return nil })(teletest.Message(1, alice, "/new"))
	require.ErrorIs(t, err, boom)
}

func TestRateLimitMiddleware(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Burst:     2,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	ran := 0
	h := mw(func(tele.Context) error { ran++; return nil })

	for i := range 3 {
		require.NoError(t, h(teletest.Message(i, alice, "hi")))
	}
	require.Equal(t, 2, ran)
	require.Equal(t, 1, limited)

	// Callbacks bypass the limiter.
	require.NoError(t, h(teletest.Callback(9, alice, "sr", "act=old")))
	require.Equal(t, 3, ran)

	// Other users have their own bucket.
	require.NoError(t, h(teletest.Message(10, &tele.User{ID: 7}, "hi")))
	require.Equal(t, 4, ran)
}

func TestRecoverMiddleware(t *testing.T) {
	err := RecoverMiddleware(func(tele.Context) error { panic("boom") })(teletest.Message(1, alice, "x"))
	require.ErrorContains(t, err, "boom")
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	c := teletest.Message(5, alice, "hello")
	require.NoError(t, LoggerMiddleware(func(tele.Context) error { return nil })(c))
	require.Equal(t, "5:42:42", c.Get("rid"))
}

func TestMessageMetricsCountsKeyboards(t *testing.T) {
	c := teletest.Message(1, alice, "x")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("plain"); err != nil {
			return err
		}
		return c.Send("kb", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{RemoveKeyboard: true}})
	})
	require.NoError(t, h(c))
	msgs, kb := GetCounters(c)
	require.Equal(t, 2, msgs)
	require.True(t, kb)
}
