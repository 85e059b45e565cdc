package state

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// Key identifies a conversation: one user in one chat.
type Key struct {
	ChatID int64
	UserID int64
}

// KeyOf derives the session key of an update. ok is false for updates
// without a sender.
func KeyOf(c tele.Context) (Key, bool) {
	user := c.Sender()
	if user == nil {
		return Key{}, false
	}
	k := Key{UserID: user.ID, ChatID: user.ID}
	if chat := c.Chat(); chat != nil {
		k.ChatID = chat.ID
	}
	return k, true
}

func (k Key) String() string {
	return strconv.FormatInt(k.ChatID, 10) + "/" + strconv.FormatInt(k.UserID, 10)
}
