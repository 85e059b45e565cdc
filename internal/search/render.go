package search

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/trustbot/core/telegram/format"
	"github.com/m3rciful/trustbot/internal/store"
)

const (
	timeLayout = "2006-01-02 15:04 UTC"
	missing    = "—"
	empty      = "(empty)"
)

// RenderHTML renders r for an HTML parse-mode message.
func RenderHTML(r store.Report) string {
	return render(r, true)
}

// RenderPlain renders r as plain text with the same lines as RenderHTML.
func RenderPlain(r store.Report) string {
	return render(r, false)
}

func render(r store.Report, html bool) string {
	esc := func(s string) string { return s }
	title := "Report #" + strconv.FormatInt(r.ID, 10)
	if html {
		esc = format.Escape
		title = format.Bold(title)
	}

	values := map[store.Field]*string{
		store.FieldExternalID: r.ExternalID,
		store.FieldBankOwner:  r.BankOwner,
		store.FieldPhone:      r.Phone,
		store.FieldRemark:     r.Remark,
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\nCreated: " + r.CreatedAt.UTC().Format(timeLayout))
	for _, f := range store.Fields {
		v, ok := values[f]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", f.Label(), esc(format.OrEmpty(v, missing, empty)))
	}
	fmt.Fprintf(&b, "\nConfirmations: %d", r.Confirmations)
	att := "no"
	if r.HasAttachment() {
		att = "yes"
	}
	b.WriteString("\n" + store.FieldAttachment.Label() + ": " + att)
	return b.String()
}

// Export joins the plain rendering of reports with a blank line between them.
func Export(reports []store.Report) []byte {
	var buf bytes.Buffer
	for i, r := range reports {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(RenderPlain(r))
	}
	return buf.Bytes()
}
