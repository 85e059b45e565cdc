package helpers

import tele "gopkg.in/telebot.v4"

// ForwardOrigin reports whether m is a forward and returns its original
// author. The user is nil when the author is hidden or the message was
// forwarded from a chat or channel. Legacy forward_* fields are consulted
// only when forward_origin is absent.
func ForwardOrigin(m *tele.Message) (*tele.User, bool) {
	switch {
	case m == nil:
		return nil, false
	case m.Origin != nil:
		return m.Origin.Sender, true
	case m.OriginalSender != nil:
		return m.OriginalSender, true
	case m.OriginalChat != nil || m.OriginalSenderName != "":
		return nil, true
	}
	return nil, false
}
