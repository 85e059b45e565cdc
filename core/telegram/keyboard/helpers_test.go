package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlineButtonsRowsSkipsEmpty(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "<", Unique: "sr", Data: "a"}, {Text: ">", Unique: "sr", Data: "b"}},
		nil,
		[]InlineBtn{{Text: "ok", Unique: "sr", Data: "c"}},
	)
	require.Len(t, m.InlineKeyboard, 2)
	require.Len(t, m.InlineKeyboard[0], 2)
	require.Equal(t, "ok", m.InlineKeyboard[1][0].Text)
	require.Equal(t, "c", m.InlineKeyboard[1][0].Data)
	require.Equal(t, "sr", m.InlineKeyboard[1][0].Unique)
}

func TestReplyButtonsNPerRow(t *testing.T) {
	m := ReplyButtonsNPerRow([]string{"a", "b", "c"}, 2)
	require.Len(t, m.ReplyKeyboard, 2)
	require.Len(t, m.ReplyKeyboard[0], 2)
	require.Equal(t, "c", m.ReplyKeyboard[1][0].Text)
	require.True(t, m.ResizeKeyboard)
}
