package router

import (
	tg "github.com/m3rciful/trustbot/core/telegram"
	"github.com/m3rciful/trustbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Conversation is the per-user dialog that consumes free-form messages.
type Conversation interface {
	// InProgress reports whether the sender has an active, unfinished dialog.
	InProgress(c tele.Context) bool
	Handle(c tele.Context) error
}

// MessageOptions controls what happens to messages outside a conversation.
type MessageOptions struct {
	// Fallback answers messages no conversation claims. Nil drops them.
	Fallback ui.FallbackProvider
}

// MessageRoutes sends text, photos, documents and other media to the
// conversation when one is in progress.
func MessageRoutes(conv Conversation, opts MessageOptions) []tg.Route {
	var unknown tele.HandlerFunc
	if opts.Fallback != nil {
		unknown = opts.Fallback.UnknownMessage()
	}
	handler := func(c tele.Context) error {
		if conv != nil && conv.InProgress(c) {
			return handleWithSummary(c, "conversation", func() error {
				return conv.Handle(c)
			})
		}
		if unknown != nil {
			return handleWithSummary(c, "unknown_message", func() error {
				return unknown(c)
			})
		}
		return nil
	}

	endpoints := []string{tele.OnText, tele.OnPhoto, tele.OnDocument, tele.OnMedia}
	routes := make([]tg.Route, 0, len(endpoints))
	for _, ep := range endpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: handler})
	}
	return routes
}
