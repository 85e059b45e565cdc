package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/trustbot/core/telegram"
	"github.com/m3rciful/trustbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"
	"github.com/m3rciful/trustbot/core/telegram/middleware"
	"github.com/m3rciful/trustbot/core/telegram/teletest"
)

var bob = &tele.User{ID: 11, FirstName: "Bob"}

func routeFor(t *testing.T, routes []tg.Route, endpoint string) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	t.Fatalf("no route for %s", endpoint)
	return nil
}

func TestCommandRoutesGateByLevel(t *testing.T) {
	reg := tg.NewRegistry()
	var ran []string
	reg.RegisterCommand("/help", commands.Command{
		Description: "help", Aliases: []string{"start"},
		Handler: func(tele.Context) error { ran = append(ran, "help"); return nil },
	})
	reg.RegisterCommand("/new", commands.Command{
		Description: "new", Level: 1,
		Handler: func(tele.Context) error { ran = append(ran, "new"); return nil },
	})

	rejected := 0
	routes := CommandRoutes(reg, CommandRouteOptions{Access: middleware.AccessOptions{
		Resolver: middleware.AccessResolverFunc(func(tele.Context) (int, error) { return 0, nil }),
		OnReject: func(tele.Context) error { rejected++; return nil },
	}})
	require.Len(t, routes, 3)

	require.NoError(t, routeFor(t, routes, "/start")(teletest.Message(1, bob, "/start")))
	require.NoError(t, routeFor(t, routes, "/new")(teletest.Message(2, bob, "/new")))
	require.Equal(t, []string{"help"}, ran)
	require.Equal(t, 1, rejected)
}

type fakeConversation struct {
	active  bool
	handled int
	unknown int
}

func (f *fakeConversation) InProgress(tele.Context) bool { return f.active }
func (f *fakeConversation) Handle(tele.Context) error    { f.handled++; return nil }

func (f *fakeConversation) UnknownMessage() tele.HandlerFunc {
	return func(tele.Context) error { f.unknown++; return nil }
}

func (f *fakeConversation) UnknownCallback() tele.HandlerFunc {
	return func(tele.Context) error { return nil }
}

func TestMessageRoutesPreferConversation(t *testing.T) {
	conv := &fakeConversation{}
	routes := MessageRoutes(conv, MessageOptions{Fallback: conv})

	text := routeFor(t, routes, tele.OnText)
	photo := routeFor(t, routes, tele.OnPhoto)

	require.NoError(t, text(teletest.Message(1, bob, "hello")))
	require.Equal(t, 1, conv.unknown)

	conv.active = true
	require.NoError(t, text(teletest.Message(2, bob, "hello")))
	require.NoError(t, photo(teletest.Photo(3, bob, "AgAD")))
	require.Equal(t, 2, conv.handled)
	require.Equal(t, 1, conv.unknown)
}

func TestCallbackRouteAnswersOnce(t *testing.T) {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("sr", func(c tele.Context) error {
		return tghelpers.Answer(c, "No more results")
	}))
	require.NoError(t, reg.RegisterCallback("quiet", func(tele.Context) error { return nil }))
	h := CallbackRoute(reg).Handler

	c := teletest.Callback(1, bob, "sr", "act=old")
	require.NoError(t, h(c))
	require.Equal(t, []string{"No more results"}, c.Notices())

	c = teletest.Callback(2, bob, "quiet", "")
	require.NoError(t, h(c))
	require.Equal(t, []string{""}, c.Notices())

	c = teletest.Callback(3, bob, "gone", "")
	require.NoError(t, h(c))
	require.Equal(t, []string{"Unsupported action"}, c.Notices())
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "not found" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	require.Equal(t, "NOT_FOUND", deriveErrorCode(fmt.Errorf("wrap: %w", codedErr{})))
	require.Equal(t, "PLAINERR", deriveErrorCode(fmt.Errorf("wrap: %w", &plainErr{})))
	require.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
	require.Equal(t, "", deriveErrorCode(nil))
}
