package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/trustbot/internal/store"
)

func ptr(s string) *string { return &s }

func sampleReport() store.Report {
	return store.Report{
		ID:            12,
		CreatedAt:     time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Phone:         ptr("+31 6 1234"),
		ExternalID:    ptr("<script>"),
		Remark:        ptr(""),
		Attachment:    ptr("photo:AgAD"),
		Confirmations: 2,
	}
}

func TestRenderPlain(t *testing.T) {
	want := "Report #12\n" +
		"Created: 2024-03-01 09:30 UTC\n" +
		"External ID: <script>\n" +
		"Bank account owner: —\n" +
		"Phone number: +31 6 1234\n" +
		"Remark: (empty)\n" +
		"Confirmations: 2\n" +
		"Attachment: yes"
	require.Equal(t, want, RenderPlain(sampleReport()))
}

func TestRenderHTMLEscapes(t *testing.T) {
	got := RenderHTML(sampleReport())
	require.Contains(t, got, "<b>Report #12</b>")
	require.Contains(t, got, "External ID: &lt;script&gt;")
}

func TestExportJoinsWithBlankLine(t *testing.T) {
	a, b := sampleReport(), sampleReport()
	b.ID = 13
	got := string(Export([]store.Report{a, b}))
	require.Equal(t, RenderPlain(a)+"\n\n"+RenderPlain(b), got)
	require.Empty(t, Export(nil))
}
