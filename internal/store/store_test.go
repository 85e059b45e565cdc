package store_test

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/trustbot/internal/store"
	"github.com/m3rciful/trustbot/internal/store/storetest"
)

var (
	operator = store.Identity{ID: 100, FirstName: "Olga"}
	trader   = store.Identity{ID: 200, FirstName: "Tom", Username: "tom"}
	viewer   = store.Identity{ID: 300, Username: "vic"}
)

func setup(t *testing.T) (*store.Store, context.Context) {
	t.Helper()
	s := storetest.Open(t)
	ctx := context.Background()
	added, err := s.AddOperator(ctx, operator, false)
	require.NoError(t, err)
	require.True(t, added)
	return s, ctx
}

func newReport(t *testing.T, s *store.Store, fields map[store.Field]string) store.Report {
	t.Helper()
	ctx := context.Background()
	rep, _, err := s.CreateReport(ctx, operator.ID, trader)
	require.NoError(t, err)
	for f, v := range fields {
		require.NoError(t, s.UpdateField(ctx, rep.ID, f, v))
	}
	return rep
}

func TestOperators(t *testing.T) {
	s, ctx := setup(t)

	added, err := s.AddOperator(ctx, operator, false)
	require.NoError(t, err)
	require.False(t, added)

	op, found, err := s.TouchOperator(ctx, store.Identity{ID: operator.ID, FirstName: "Olga", LastName: "K"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "K", op.LastName)
	require.False(t, op.Super)

	_, found, err = s.TouchOperator(ctx, viewer)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.SeedOperators(ctx, []int64{1}))
	res, err := s.RemoveOperator(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, store.OperatorProtected, res)

	res, err = s.RemoveOperator(ctx, operator.ID)
	require.NoError(t, err)
	require.Equal(t, store.OperatorRemoved, res)

	res, err = s.RemoveOperator(ctx, operator.ID)
	require.NoError(t, err)
	require.Equal(t, store.OperatorNotFound, res)
}

func TestCreateReport(t *testing.T) {
	s, ctx := setup(t)

	first, created, err := s.CreateReport(ctx, operator.ID, trader)
	require.NoError(t, err)
	require.True(t, created)
	require.Nil(t, first.Phone)
	require.Nil(t, first.Attachment)
	require.Equal(t, operator.ID, *first.CreatedBy)
	require.Equal(t, trader.ID, *first.ReportedBy)
	require.Zero(t, first.Confirmations, "forwarded-from reporter does not vouch")

	second, created, err := s.CreateReport(ctx, operator.ID, trader)
	require.NoError(t, err)
	require.False(t, created)
	require.Greater(t, second.ID, first.ID)
	require.False(t, second.CreatedAt.Before(first.CreatedAt))

	known, err := s.TouchReporter(ctx, trader)
	require.NoError(t, err)
	require.True(t, known)
}

func TestCreatedAtNeverDecreases(t *testing.T) {
	s, ctx := setup(t)
	first := newReport(t, s, nil)

	// A clock that went backwards still yields a non-decreasing timestamp.
	s.SetClock(func() time.Time { return first.CreatedAt.Add(-time.Hour) })
	second := newReport(t, s, nil)
	require.True(t, second.CreatedAt.Equal(first.CreatedAt))

	got, ok, err := s.FindReport(ctx, "", 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second.ID, got.ID, "ties break on id")
}

func TestConcurrentCreatesKeepIDAndTimeOrder(t *testing.T) {
	s, ctx := setup(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	// Jittery clock: successive reads step back and forth by a minute.
	s.SetClock(func() time.Time {
		n := tick.Add(1)
		return base.Add(time.Duration(n%3-1) * time.Minute)
	})

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.CreateReport(ctx, operator.ID, store.Identity{ID: int64(1000 + i)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reps, err := s.SearchReports(ctx, "", workers+1)
	require.NoError(t, err)
	require.Len(t, reps, workers)
	for i := 1; i < len(reps); i++ {
		newer, older := reps[i-1], reps[i]
		require.Greater(t, newer.ID, older.ID)
		require.False(t, newer.CreatedAt.Before(older.CreatedAt), "report %d predates %d", newer.ID, older.ID)
	}
}

func TestUpdateFieldAndReport(t *testing.T) {
	s, ctx := setup(t)
	rep := newReport(t, s, map[store.Field]string{store.FieldPhone: "+3161234", store.FieldRemark: ""})

	got, err := s.Report(ctx, rep.ID)
	require.NoError(t, err)
	require.Equal(t, "+3161234", *got.Phone)
	require.Equal(t, "", *got.Remark)
	require.Nil(t, got.BankOwner)

	require.ErrorIs(t, s.UpdateField(ctx, 9999, store.FieldPhone, "x"), store.ErrNotFound)
	require.Error(t, s.UpdateField(ctx, rep.ID, store.Field("id"), "x"))

	_, err = s.Report(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFindReportOrderingAndMatch(t *testing.T) {
	s, ctx := setup(t)
	older := newReport(t, s, map[store.Field]string{store.FieldBankOwner: "Jan Jansen"})
	newer := newReport(t, s, map[store.Field]string{store.FieldRemark: "met Jansen twice"})
	newReport(t, s, map[store.Field]string{store.FieldPhone: "0612"})

	got, ok, err := s.FindReport(ctx, "Jansen", 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, newer.ID, got.ID)

	got, ok, err = s.FindReport(ctx, "Jansen", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, older.ID, got.ID)

	_, ok, err = s.FindReport(ctx, "Jansen", 2)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.FindReport(ctx, "Jansen", -1)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.FindReport(ctx, "jansen", 0)
	require.NoError(t, err)
	require.False(t, ok, "match is case-sensitive")

	all, err := s.SearchReports(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestToggleConfirmationIsInvolutive(t *testing.T) {
	s, ctx := setup(t)
	rep := newReport(t, s, nil)

	tg, err := s.ToggleConfirmation(ctx, rep.ID, viewer)
	require.NoError(t, err)
	require.Equal(t, store.Toggle{Confirmed: true, NewReporter: true}, tg)

	ok, err := s.IsConfirmed(ctx, rep.ID, viewer.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Report(ctx, rep.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Confirmations)

	tg, err = s.ToggleConfirmation(ctx, rep.ID, viewer)
	require.NoError(t, err)
	require.Equal(t, store.Toggle{}, tg)

	ok, err = s.IsConfirmed(ctx, rep.ID, viewer.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.ToggleConfirmation(ctx, 9999, viewer)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteReportDetachesConfirmations(t *testing.T) {
	s, ctx := setup(t)
	rep := newReport(t, s, nil)
	_, err := s.ToggleConfirmation(ctx, rep.ID, viewer)
	require.NoError(t, err)

	deleted, err := s.DeleteReport(ctx, rep.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	ok, err := s.IsConfirmed(ctx, rep.ID, viewer.ID)
	require.NoError(t, err)
	require.False(t, ok)

	deleted, err = s.DeleteReport(ctx, rep.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	next := newReport(t, s, nil)
	require.Greater(t, next.ID, rep.ID, "ids are never reused")
}

func TestWriteSnapshot(t *testing.T) {
	s, ctx := setup(t)
	rep := newReport(t, s, map[store.Field]string{store.FieldExternalID: "@trader"})
	_, err := s.ToggleConfirmation(ctx, rep.ID, viewer)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.WriteSnapshot(ctx, &buf))

	var snap struct {
		Operators     []map[string]any `yaml:"operators"`
		Reporters     []map[string]any `yaml:"reporters"`
		Reports       []map[string]any `yaml:"reports"`
		Confirmations []map[string]any `yaml:"confirmations"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &snap))
	require.Len(t, snap.Operators, 1)
	require.Len(t, snap.Reporters, 2)
	require.Len(t, snap.Reports, 1)
	require.Equal(t, "@trader", snap.Reports[0]["external_id"])
	require.Len(t, snap.Confirmations, 1)
}

func TestAttachmentFormat(t *testing.T) {
	s := store.FormatAttachment(store.AttachmentPhoto, "AgAD:x")
	kind, ref, err := store.ParseAttachment(s)
	require.NoError(t, err)
	require.Equal(t, store.AttachmentPhoto, kind)
	require.Equal(t, "AgAD:x", ref)

	_, _, err = store.ParseAttachment("video:1")
	require.Error(t, err)
	_, _, err = store.ParseAttachment("photo")
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Tom", trader.DisplayName())
	require.Equal(t, "@vic", viewer.DisplayName())
	require.Equal(t, "user 5", store.Identity{ID: 5}.DisplayName())
}

func TestFieldLabelsRoundTrip(t *testing.T) {
	for _, f := range store.Fields {
		got, ok := store.FieldByLabel(f.Label())
		require.True(t, ok, f)
		require.Equal(t, f, got)
	}
	_, ok := store.FieldByLabel("Telegram ID")
	require.False(t, ok)
}
