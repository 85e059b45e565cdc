package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
// Level is the minimal access level required to run it; 0 means everyone.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Level       int
	Hidden      bool
	Aliases     []string
}
