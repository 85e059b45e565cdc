package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeAndWrap(t *testing.T) {
	require.Equal(t, "a &lt;b&gt; &amp; c", Escape("a <b> & c"))
	require.Equal(t, "<b>#12</b>", Bold("#12"))
}

func TestOrEmpty(t *testing.T) {
	empty, val := "", "v"
	require.Equal(t, "—", OrEmpty(nil, "—", "(empty)"))
	require.Equal(t, "(empty)", OrEmpty(&empty, "—", "(empty)"))
	require.Equal(t, "v", OrEmpty(&val, "—", "(empty)"))
}
