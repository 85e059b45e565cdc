package bot

import (
	"strings"

	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// UnknownMessage answers commands nobody handles and ignores other chatter.
func (b *Bot) UnknownMessage() tele.HandlerFunc {
	return func(c tele.Context) error {
		msg := c.Message()
		if msg == nil || !strings.HasPrefix(msg.Text, "/") || msg.Chat == nil || msg.Chat.Type != tele.ChatPrivate {
			return nil
		}
		return tghelpers.SendPlain(c, msgUnknownCmd)
	}
}

// UnknownCallback answers buttons from other or older keyboards.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.Answer(c, msgUnknownAction)
	}
}

// RateLimited answers throttled button presses so the client stops spinning.
// Throttled messages are dropped without a reply.
func (b *Bot) RateLimited() tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		return tghelpers.Answer(c, msgSlowDown)
	}
}
