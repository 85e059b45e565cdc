package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/internal/store"
)

// Notices shown as transient callback answers.
const (
	NoticeNoMore       = "No more results"
	NoticeNotFound     = "Not found, please search again"
	NoticeConfirmed    = "You confirmed this report."
	NoticeUnconfirmed  = "You removed your confirmation."
	NoticeNoAttachment = "This report has no attachment."
)

const (
	DefaultExportLimit = 100
	ExportFileName     = "search.txt"
)

// Source is the part of the store the engine reads and writes.
type Source interface {
	FindReport(ctx context.Context, query string, offset int) (store.Report, bool, error)
	SearchReports(ctx context.Context, query string, limit int) ([]store.Report, error)
	IsConfirmed(ctx context.Context, reportID, reporterID int64) (bool, error)
	ToggleConfirmation(ctx context.Context, reportID int64, who store.Identity) (store.Toggle, error)
	TouchReporter(ctx context.Context, who store.Identity) (bool, error)
}

// Attachment is a stored file to send back to the viewer.
type Attachment struct {
	Kind store.AttachmentKind
	Ref  string
}

// Outcome tells the caller how to update the result message.
type Outcome struct {
	// Notice is the transient answer to the button press.
	Notice string
	// Changed is false when the message must stay as it is.
	Changed bool
	// Text replaces the message text when non-empty; otherwise only the
	// keyboard is replaced.
	Text string
	View View
	// Attachment and Export are files to send alongside.
	Attachment  *Attachment
	Export      []byte
	NewReporter bool
}

// Engine answers search requests and button presses.
type Engine struct {
	src         Source
	exportLimit int
}

// NewEngine creates an Engine. A non-positive exportLimit uses DefaultExportLimit.
func NewEngine(src Source, exportLimit int) *Engine {
	if exportLimit <= 0 {
		exportLimit = DefaultExportLimit
	}
	return &Engine{src: src, exportLimit: exportLimit}
}

// Start produces the first page for query. ok is false when nothing matches.
func (e *Engine) Start(ctx context.Context, query string, viewer store.Identity) (Outcome, bool, error) {
	query = NormalizeQuery(query)
	rep, ok, err := e.src.FindReport(ctx, query, 0)
	if err != nil || !ok {
		return Outcome{}, false, err
	}
	v := NewView(query)
	if v.Confirmed, err = e.src.IsConfirmed(ctx, rep.ID, viewer.ID); err != nil {
		return Outcome{}, false, err
	}
	if !rep.HasAttachment() {
		v.NoAttachment = v.NoAttachment.With(0)
	}
	logger.Debug(ctx, logger.CompSearch, "search.start",
		slog.Int64("report_id", rep.ID),
		slog.Int("query_len", len(query)),
	)
	return Outcome{Changed: true, Text: RenderHTML(rep), View: v}, true, nil
}

// Apply executes the action carried by v on behalf of viewer.
func (e *Engine) Apply(ctx context.Context, v View, viewer store.Identity) (Outcome, error) {
	if _, err := e.src.TouchReporter(ctx, viewer); err != nil {
		return Outcome{}, err
	}

	switch v.Action {
	case ActOlder:
		return e.move(ctx, v, viewer, v.Offset+1)
	case ActNewer:
		return e.move(ctx, v, viewer, v.Offset-1)
	case ActConfirm, ActAttachment, ActDownload:
	default:
		return Outcome{View: v}, nil
	}

	// Mutating actions re-validate the current result first.
	rep, ok, err := e.src.FindReport(ctx, v.Query, v.Offset)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Notice: NoticeNotFound, View: v}, nil
	}

	switch v.Action {
	case ActConfirm:
		return e.confirm(ctx, v, viewer, rep)
	case ActAttachment:
		return e.attachment(ctx, v, rep)
	default:
		return e.download(ctx, v)
	}
}

func (e *Engine) move(ctx context.Context, v View, viewer store.Identity, offset int) (Outcome, error) {
	rep, ok, err := e.src.FindReport(ctx, v.Query, offset)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Notice: NoticeNoMore, View: v}, nil
	}
	v.Offset = offset
	if !rep.HasAttachment() {
		v.NoAttachment = v.NoAttachment.With(offset)
	}
	if v.Confirmed, err = e.src.IsConfirmed(ctx, rep.ID, viewer.ID); err != nil {
		return Outcome{}, err
	}
	return Outcome{Changed: true, Text: RenderHTML(rep), View: v}, nil
}

func (e *Engine) confirm(ctx context.Context, v View, viewer store.Identity, rep store.Report) (Outcome, error) {
	t, err := e.src.ToggleConfirmation(ctx, rep.ID, viewer)
	if err != nil {
		return Outcome{}, fmt.Errorf("toggle confirmation: %w", err)
	}
	v.Confirmed = t.Confirmed
	notice := NoticeUnconfirmed
	if t.Confirmed {
		notice = NoticeConfirmed
		rep.Confirmations++
	} else if rep.Confirmations > 0 {
		rep.Confirmations--
	}
	return Outcome{
		Notice:      notice,
		Changed:     true,
		Text:        RenderHTML(rep),
		View:        v,
		NewReporter: t.NewReporter,
	}, nil
}

func (e *Engine) attachment(ctx context.Context, v View, rep store.Report) (Outcome, error) {
	v.NoAttachment = v.NoAttachment.With(v.Offset)
	if !rep.HasAttachment() {
		return Outcome{Notice: NoticeNoAttachment, Changed: true, View: v}, nil
	}
	kind, ref, err := store.ParseAttachment(*rep.Attachment)
	if err != nil {
		logger.Warn(ctx, logger.CompSearch, "attachment.malformed",
			slog.Int64("report_id", rep.ID), logger.Err(err))
		return Outcome{Notice: NoticeNoAttachment, Changed: true, View: v}, nil
	}
	return Outcome{Changed: true, View: v, Attachment: &Attachment{Kind: kind, Ref: ref}}, nil
}

func (e *Engine) download(ctx context.Context, v View) (Outcome, error) {
	reps, err := e.src.SearchReports(ctx, v.Query, e.exportLimit)
	if err != nil {
		return Outcome{}, err
	}
	v.ShowDownload = false
	data := Export(reps)
	logger.Info(ctx, logger.CompSearch, "export",
		slog.Int("count", len(reps)),
		logger.Size(len(data)),
	)
	return Outcome{Changed: true, View: v, Export: data}, nil
}
