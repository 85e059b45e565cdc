package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyboardRows(t *testing.T) {
	v := View{Offset: 0, NoAttachment: OffsetSet{0}, Query: "0612", ShowDownload: true}
	m, err := Keyboard(v)
	require.NoError(t, err)
	require.Len(t, m.InlineKeyboard, 2)
	require.Len(t, m.InlineKeyboard[0], 3)
	require.Equal(t, labelConfirm, m.InlineKeyboard[0][1].Text)
	require.Len(t, m.InlineKeyboard[1], 1)
	require.Equal(t, labelDownload, m.InlineKeyboard[1][0].Text)

	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			require.Equal(t, Unique, b.Unique)
			require.LessOrEqual(t, len(b.Data), PayloadLimit)
			got, err := Decode(b.Data)
			require.NoError(t, err)
			require.Equal(t, "0612", got.Query)
		}
	}

	older, err := Decode(m.InlineKeyboard[0][0].Data)
	require.NoError(t, err)
	require.Equal(t, ActOlder, older.Action)
}

func TestKeyboardConfirmedWithAttachmentNoDownload(t *testing.T) {
	m, err := Keyboard(View{Offset: 1, NoAttachment: OffsetSet{0}, Confirmed: true, Query: "q"})
	require.NoError(t, err)
	require.Equal(t, labelUnconfirm, m.InlineKeyboard[0][1].Text)
	require.Len(t, m.InlineKeyboard[1], 1)
	require.Equal(t, labelAttachment, m.InlineKeyboard[1][0].Text)
}

func TestKeyboardOnlyFirstRow(t *testing.T) {
	m, err := Keyboard(View{NoAttachment: OffsetSet{0}, Query: "q"})
	require.NoError(t, err)
	require.Len(t, m.InlineKeyboard, 1)
}
