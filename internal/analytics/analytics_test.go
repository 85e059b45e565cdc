package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHTTPTrackerPostsEvent(t *testing.T) {
	var (
		mu   sync.Mutex
		got  []event
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		got = append(got, ev)
		auth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr := NewHTTPTracker(Options{Endpoint: srv.URL, Token: "secret"})
	tr.Track(context.Background(), 42, EventSearch)
	tr.Track(context.Background(), 42, EventNewReport)
	require.NoError(t, tr.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	require.Equal(t, "Bearer secret", auth)
	require.Equal(t, EventSearch, got[0].Event)
	require.Equal(t, EventNewReport, got[1].Event)
	require.Equal(t, UserKey(42), got[0].User)
	require.Equal(t, got[0].User, got[1].User)
	require.NotEqual(t, got[0].ID, got[1].ID)
	_, err := uuid.Parse(got[0].ID)
	require.NoError(t, err)
}

func TestHTTPTrackerIgnoresCollectorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewHTTPTracker(Options{Endpoint: srv.URL})
	tr.Track(context.Background(), 1, EventNewReporter)
	require.NoError(t, tr.Close())
	require.EqualValues(t, 1, tr.disp.ErrorCount())
}

func TestUserKeyIsStable(t *testing.T) {
	require.Equal(t, UserKey(7), UserKey(7))
	require.NotEqual(t, UserKey(7), UserKey(8))
	require.Equal(t, uuid.Version(5), uuid.MustParse(UserKey(7)).Version())
}

func TestNopTracker(t *testing.T) {
	var tr Tracker = Nop{}
	tr.Track(context.Background(), 1, EventSearch)
}
