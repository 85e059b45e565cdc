package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/trustbot/internal/store"
	"github.com/m3rciful/trustbot/internal/store/storetest"
)

var (
	op      = store.Identity{ID: 1, FirstName: "Op"}
	trader  = store.Identity{ID: 2, FirstName: "Trader"}
	visitor = store.Identity{ID: 3, FirstName: "Visitor"}
)

type fixture struct {
	s            *store.Store
	e            *Engine
	older, newer store.Report
	unrelated    store.Report
}

func setupEngine(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := storetest.Open(t)
	_, err := s.AddOperator(ctx, op, false)
	require.NoError(t, err)

	mk := func(fields map[store.Field]string) store.Report {
		rep, _, err := s.CreateReport(ctx, op.ID, trader)
		require.NoError(t, err)
		for f, v := range fields {
			require.NoError(t, s.UpdateField(ctx, rep.ID, f, v))
		}
		return rep
	}
	f := fixture{s: s, e: NewEngine(s, 0)}
	f.older = mk(map[store.Field]string{
		store.FieldBankOwner:  "Jan Jansen",
		store.FieldAttachment: store.FormatAttachment(store.AttachmentDocument, "BQAD"),
	})
	f.newer = mk(map[store.Field]string{store.FieldRemark: "Jansen again"})
	f.unrelated = mk(map[store.Field]string{store.FieldPhone: "0612"})
	return f
}

func TestStartShowsNewestMatch(t *testing.T) {
	f := setupEngine(t)
	out, ok, err := f.e.Start(context.Background(), "Jan%sen", visitor)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, out.Text, "Report #")
	require.Contains(t, out.Text, "Jansen again")
	require.Equal(t, "Jansen", out.View.Query)
	require.True(t, out.View.NoAttachment.Has(0))
	require.True(t, out.View.ShowDownload)

	_, ok, err = f.e.Start(context.Background(), "nobody", visitor)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOlderThenNewerReturnsToSameReport(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	start, _, err := f.e.Start(ctx, "Jansen", visitor)
	require.NoError(t, err)

	v := start.View
	v.Action = ActOlder
	older, err := f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.True(t, older.Changed)
	require.Equal(t, 1, older.View.Offset)
	require.Contains(t, older.Text, "Jan Jansen")
	require.False(t, older.View.NoAttachment.Has(1))

	v = older.View
	v.Action = ActOlder
	end, err := f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.False(t, end.Changed)
	require.Equal(t, NoticeNoMore, end.Notice)
	require.Equal(t, 1, end.View.Offset)

	v.Action = ActNewer
	back, err := f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.Equal(t, start.Text, back.Text)
	require.Equal(t, 0, back.View.Offset)

	v = back.View
	v.Action = ActNewer
	none, err := f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.Equal(t, NoticeNoMore, none.Notice)
}

func TestConfirmToggles(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	start, _, err := f.e.Start(ctx, "0612", visitor)
	require.NoError(t, err)

	v := start.View
	v.Action = ActConfirm
	out, err := f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.Equal(t, NoticeConfirmed, out.Notice)
	require.True(t, out.View.Confirmed)
	require.True(t, out.NewReporter)
	require.Contains(t, out.Text, "Confirmations: 1")

	v = out.View
	v.Action = ActConfirm
	out, err = f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.Equal(t, NoticeUnconfirmed, out.Notice)
	require.False(t, out.View.Confirmed)
	require.Contains(t, out.Text, "Confirmations: 0")
}

func TestMutatingActionsRevalidate(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	start, _, err := f.e.Start(ctx, "0612", visitor)
	require.NoError(t, err)

	_, err = f.s.DeleteReport(ctx, f.unrelated.ID)
	require.NoError(t, err)

	for _, act := range []Action{ActConfirm, ActAttachment, ActDownload} {
		v := start.View
		v.Action = act
		out, err := f.e.Apply(ctx, v, visitor)
		require.NoError(t, err)
		require.Equal(t, NoticeNotFound, out.Notice, act)
		require.False(t, out.Changed)
	}
}

func TestAttachmentAndDownload(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)

	v := View{Action: ActAttachment, Offset: 1, Query: "Jansen", ShowDownload: true}
	out, err := f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.Equal(t, &Attachment{Kind: store.AttachmentDocument, Ref: "BQAD"}, out.Attachment)
	require.True(t, out.View.NoAttachment.Has(1))
	require.Empty(t, out.Text)

	v.Action = ActDownload
	out, err = f.e.Apply(ctx, v, visitor)
	require.NoError(t, err)
	require.False(t, out.View.ShowDownload)
	export := string(out.Export)
	require.Equal(t, 2, strings.Count(export, "Report #"))
	require.Contains(t, export, "\n\n")
}

func TestExportLimit(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	e := NewEngine(f.s, 1)
	out, err := e.Apply(ctx, View{Action: ActDownload, Query: "Jansen"}, visitor)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(out.Export), "Report #"))
}
