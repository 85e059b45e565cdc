package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and callbacks.
type Registry struct {
	commands         map[string]commands.Command
	order            []string
	callbacks        map[string]tele.HandlerFunc
	callbacksMu      sync.RWMutex
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry with default fallbacks.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return tghelpers.Answer(c, "Unsupported action")
		},
	}
}

// RegisterCommand adds a new command. Registration order is kept for help listings.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	ctx := context.Background()
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		logger.Warn(ctx, logger.CompWire, "register.command.skip",
			slog.String("name", name), slog.String("cause", "invalid"))
		return
	case name[0] != '/':
		logger.Warn(ctx, logger.CompWire, "register.command.skip",
			slog.String("name", name), slog.String("cause", "no_slash_prefix"))
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(ctx, logger.CompWire, "register.command.duplicate", slog.String("name", name))
		return
	}
	r.commands[name] = cmd
	r.order = append(r.order, name)
}

// CommandEntry pairs a command name with its metadata.
type CommandEntry struct {
	Name string
	commands.Command
}

// Entries returns every registered command in registration order.
func (r *Registry) Entries() []CommandEntry {
	out := make([]CommandEntry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, CommandEntry{Name: name, Command: r.commands[name]})
	}
	return out
}

// CommandsAtLevel returns visible commands whose level is exactly level, in registration order.
func (r *Registry) CommandsAtLevel(level int) []CommandEntry {
	var out []CommandEntry
	for _, name := range r.order {
		cmd := r.commands[name]
		if cmd.Hidden || cmd.Level != level {
			continue
		}
		out = append(out, CommandEntry{Name: name, Command: cmd})
	}
	return out
}

// ListCommands returns the public command menu: visible commands anyone may run.
func (r *Registry) ListCommands() []tele.Command {
	var list []tele.Command
	for _, e := range r.CommandsAtLevel(0) {
		list = append(list, tele.Command{Text: strings.TrimPrefix(e.Name, "/"), Description: e.Description})
	}
	return list
}

// LookupCommand searches for a command by name or its aliases and returns the canonical key with metadata if found.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name, _, _ = strings.Cut(strings.TrimSpace(name), " ")
	name, _, _ = strings.Cut(name, "@")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// RegisterCallback adds a callback handler mapped to its unique key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		logger.Warn(context.Background(), logger.CompWire, "register.callback.skip",
			slog.String("cb_key", key),
			slog.Bool("handler_nil", handler == nil),
		)
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback safely returns handler by key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns sorted keys (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the current fallback callback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// InitBotCommands publishes the public command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands()); err != nil {
		logger.Error(context.Background(), logger.CompWire, "register.commands.set_failed", logger.Err(err))
	}
}
