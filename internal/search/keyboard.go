package search

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/trustbot/core/telegram/keyboard"
)

// Unique is the callback key of every search button.
const Unique = "sr"

const (
	labelOlder      = "« Older"
	labelNewer      = "Newer »"
	labelConfirm    = "👍 Confirm"
	labelUnconfirm  = "Unconfirm"
	labelAttachment = "📎 Attachment"
	labelDownload   = "⬇ Download all"
)

// Keyboard renders the two button rows for v. Each button carries v with
// its own action.
func Keyboard(v View) (*tele.ReplyMarkup, error) {
	btn := func(text string, act Action) (keyboard.InlineBtn, error) {
		next := v
		next.Action = act
		data, err := EncodeWithin(next, PayloadLimit)
		return keyboard.InlineBtn{Text: text, Unique: Unique, Data: data}, err
	}

	confirmLabel := labelConfirm
	if v.Confirmed {
		confirmLabel = labelUnconfirm
	}
	specs := []struct {
		text string
		act  Action
		row  int
		show bool
	}{
		{labelOlder, ActOlder, 0, true},
		{confirmLabel, ActConfirm, 0, true},
		{labelNewer, ActNewer, 0, true},
		{labelAttachment, ActAttachment, 1, !v.NoAttachment.Has(v.Offset)},
		{labelDownload, ActDownload, 1, v.ShowDownload},
	}

	rows := make([][]keyboard.InlineBtn, 2)
	for _, s := range specs {
		if !s.show {
			continue
		}
		b, err := btn(s.text, s.act)
		if err != nil {
			return nil, err
		}
		rows[s.row] = append(rows[s.row], b)
	}
	return keyboard.InlineButtonsRows(rows...), nil
}
