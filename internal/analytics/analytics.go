// Package analytics reports usage events to an external collector.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/core/telegram/sender"
)

// Usage events.
const (
	EventNewReport   = "new_report"
	EventNewReporter = "new_reporter"
	EventSearch      = "search"
)

// userNamespace scopes the stable per-user ids sent to the collector.
var userNamespace = uuid.MustParse("5d0b0a59-8a53-4f1e-9f43-2f8c1d9f6a11")

// Tracker records a usage event. Implementations never block the caller
// on network I/O and never fail the calling handler.
type Tracker interface {
	Track(ctx context.Context, userID int64, event string)
}

// Nop discards every event.
type Nop struct{}

// Track implements Tracker.
func (Nop) Track(context.Context, int64, string) {}

// Options configure an HTTPTracker.
type Options struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Client   *http.Client
}

// HTTPTracker posts events as JSON through its own dispatcher.
type HTTPTracker struct {
	endpoint string
	token    string
	client   *http.Client
	disp     *sender.Dispatcher
	now      func() time.Time
}

type event struct {
	ID    string    `json:"id"`
	User  string    `json:"user"`
	Event string    `json:"event"`
	TS    time.Time `json:"ts"`
}

// NewHTTPTracker builds a tracker. Call Close to drain pending events.
func NewHTTPTracker(opts Options) *HTTPTracker {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTracker{
		endpoint: opts.Endpoint,
		token:    opts.Token,
		client:   client,
		disp: sender.NewDispatcher(sender.Options{
			QueueSize:  128,
			Workers:    1,
			MaxRetries: 0,
			Component:  logger.CompAnalytics,
		}),
		now: time.Now,
	}
}

// Track enqueues the event. A full queue drops it.
func (t *HTTPTracker) Track(ctx context.Context, userID int64, name string) {
	ev := event{
		ID:    uuid.NewString(),
		User:  UserKey(userID),
		Event: name,
		TS:    t.now().UTC(),
	}
	ctx = context.WithoutCancel(ctx)
	err := t.disp.Enqueue(ctx, "track."+name, t.endpoint, func() error {
		return t.post(ctx, ev)
	})
	if err != nil {
		logger.Warn(ctx, logger.CompAnalytics, "track.drop",
			slog.String("event", name),
			logger.Err(err),
		)
	}
}

func (t *HTTPTracker) post(ctx context.Context, ev event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}
	return nil
}

// statusError satisfies sender.StatusError so failed posts are bucketed by code.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string   { return "analytics: collector returned " + e.status }
func (e *statusError) StatusCode() int { return e.code }

// Close waits for queued events to be sent.
func (t *HTTPTracker) Close() error {
	t.disp.Close()
	return nil
}

// UserKey maps a Telegram user id to a stable opaque id.
func UserKey(userID int64) string {
	return uuid.NewSHA1(userNamespace, []byte(strconv.FormatInt(userID, 10))).String()
}
