package callbacks

import (
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		unique, data string
	}{
		{"nil", nil, "", ""},
		{"split by telebot", &tele.Callback{Unique: "sr", Data: "act=next"}, "sr", "act=next"},
		{"raw encoded", &tele.Callback{Data: "\fsr|act=next|x"}, "sr", "act=next|x"},
		{"raw without payload", &tele.Callback{Data: "\fsr"}, "sr", ""},
		{"plain data", &tele.Callback{Data: "hello"}, "", "hello"},
		{"payload keeps trailing space", &tele.Callback{Data: "\fsr|act=confirm%qry=Jan\u00a0 "}, "sr", "act=confirm%qry=Jan\u00a0 "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, p := ParseCallbackData(tc.cb)
			require.Equal(t, tc.unique, u)
			require.Equal(t, tc.data, p)
		})
	}
}
