// Package bot implements the trust-report conversations and search buttons.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/trustbot/core/logger"
	tg "github.com/m3rciful/trustbot/core/telegram"
	"github.com/m3rciful/trustbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"
	"github.com/m3rciful/trustbot/core/telegram/middleware"
	"github.com/m3rciful/trustbot/core/telegram/state"
	"github.com/m3rciful/trustbot/internal/analytics"
	"github.com/m3rciful/trustbot/internal/roles"
	"github.com/m3rciful/trustbot/internal/search"
	"github.com/m3rciful/trustbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

const defaultSearchWindow = 30 * time.Second

// Options tune a Bot. Zero values fall back to defaults.
type Options struct {
	Sessions     state.Options
	SearchWindow time.Duration
	// Now replaces the clock used for the search window.
	Now func() time.Time
}

// Bot owns the conversation sessions and the handlers that drive them.
type Bot struct {
	store    *store.Store
	gate     *roles.Gate
	engine   *search.Engine
	tracker  analytics.Tracker
	reg      *tg.Registry
	sessions *state.Store[session]
	steps    map[stepKey]stepFunc
	window   time.Duration
	now      func() time.Time
}

// New wires a Bot. A nil tracker disables analytics.
func New(st *store.Store, gate *roles.Gate, engine *search.Engine, tracker analytics.Tracker, opts Options) *Bot {
	if tracker == nil {
		tracker = analytics.Nop{}
	}
	if opts.SearchWindow <= 0 {
		opts.SearchWindow = defaultSearchWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &Bot{
		store:    st,
		gate:     gate,
		engine:   engine,
		tracker:  tracker,
		sessions: state.NewStore[session](opts.Sessions),
		window:   opts.SearchWindow,
		now:      opts.Now,
	}
	b.steps = b.transitions()
	return b
}

// Register adds the bot's commands and search buttons to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	b.reg = reg
	operator, super := int(roles.Operator), int(roles.SuperOperator)

	reg.RegisterCommand("/help", commands.Command{
		Handler: b.onHelp, Description: "Show available commands", Aliases: []string{"start"},
	})
	reg.RegisterCommand("/search", commands.Command{
		Handler: b.onSearch, Description: "Search the database for reports",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler: b.onCancel, Description: "Cancel current operation",
	})
	reg.RegisterCommand("/new", commands.Command{
		Handler: b.onNewReport, Description: "Add a new report", Level: operator,
	})
	reg.RegisterCommand("/edit", commands.Command{
		Handler: b.onEditReport, Description: "Edit an existing report", Level: operator,
	})
	reg.RegisterCommand("/delete", commands.Command{
		Handler: b.onDeleteReport, Description: "Delete a report", Level: operator,
	})
	reg.RegisterCommand("/add_admin", commands.Command{
		Handler: b.onAddOperator, Description: "Register a new operator", Level: super,
	})
	reg.RegisterCommand("/remove_admin", commands.Command{
		Handler: b.onRemoveOperator, Description: "Remove an operator", Level: super,
	})
	reg.RegisterCommand("/download_database", commands.Command{
		Handler: b.onDownloadDatabase, Description: "Download the complete database", Level: super,
	})

	reg.SetCallbackNotFound(b.UnknownCallback())
	return reg.RegisterCallback(search.Unique, b.onSearchButton)
}

// AccessOptions gates commands by the sender's role. Rejected callers lose
// any running conversation and get no reply.
func (b *Bot) AccessOptions() middleware.AccessOptions {
	return middleware.AccessOptions{Resolver: b, OnReject: b.reject}
}

// AccessLevel implements middleware.AccessResolver.
func (b *Bot) AccessLevel(c tele.Context) (int, error) {
	role, err := b.role(c)
	return int(role), err
}

func (b *Bot) role(c tele.Context) (roles.Role, error) {
	if c.Sender() == nil {
		return roles.Anonymous, nil
	}
	return b.gate.Resolve(tghelpers.BuildContext(c), identityOf(c.Sender()))
}

func (b *Bot) reject(c tele.Context) error {
	if k, ok := state.KeyOf(c); ok {
		b.sessions.Delete(k)
	}
	return nil
}

// begin replaces the sender's session with the first node of a flow.
func (b *Bot) begin(c tele.Context, s session) {
	k, ok := state.KeyOf(c)
	if !ok {
		return
	}
	b.sessions.Put(k, s)
	logger.Debug(tghelpers.BuildContext(c), logger.CompConv, "conv.begin",
		slog.String("flow", string(s.Flow)),
		slog.String("next", string(s.Node)),
	)
}

func (b *Bot) track(ctx context.Context, userID int64, event string) {
	b.tracker.Track(ctx, userID, event)
}

func identityOf(u *tele.User) store.Identity {
	if u == nil {
		return store.Identity{}
	}
	return store.Identity{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}
