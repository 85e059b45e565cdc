package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies the handlers for updates that match no command,
// callback key or open conversation.
type FallbackProvider interface {
	UnknownMessage() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
