package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/core/telegram/format"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"
	"github.com/m3rciful/trustbot/core/telegram/keyboard"
	"github.com/m3rciful/trustbot/core/telegram/state"
	"github.com/m3rciful/trustbot/internal/analytics"
	"github.com/m3rciful/trustbot/internal/search"
	"github.com/m3rciful/trustbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

type stepKey struct {
	flow flow
	node node
}

// stepFunc consumes one inbound message and returns the next session.
// Returning s unchanged holds the current node.
type stepFunc func(ctx context.Context, c tele.Context, s session) (session, error)

func (b *Bot) transitions() map[stepKey]stepFunc {
	return map[stepKey]stepFunc{
		{flowNewReport, nodeAwaitForward}:       b.createReport,
		{flowNewReport, nodeSelectField}:        b.selectField,
		{flowNewReport, nodeAwaitValue}:         b.writeField,
		{flowEditReport, nodeAwaitTargetID}:     b.pickReportToEdit,
		{flowEditReport, nodeSelectField}:       b.selectField,
		{flowEditReport, nodeAwaitValue}:        b.writeField,
		{flowDeleteReport, nodeAwaitTargetID}:   b.deleteReport,
		{flowAddOperator, nodeAwaitForward}:     b.addOperator,
		{flowRemoveOperator, nodeAwaitTargetID}: b.removeOperator,
		{flowSearch, nodeAwaitQuery}:            b.runSearch,
	}
}

// InProgress reports whether the sender has an unfinished conversation.
func (b *Bot) InProgress(c tele.Context) bool {
	k, ok := state.KeyOf(c)
	if !ok {
		return false
	}
	s, ok := b.sessions.Get(k)
	return ok && !s.idle()
}

// Handle feeds a message to the sender's conversation.
func (b *Bot) Handle(c tele.Context) error {
	k, ok := state.KeyOf(c)
	if !ok {
		return nil
	}
	s, ok := b.sessions.Get(k)
	if !ok || s.idle() {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	step, ok := b.steps[stepKey{s.Flow, s.Node}]
	if !ok {
		logger.Warn(ctx, logger.CompConv, "conv.no_step",
			slog.String("flow", string(s.Flow)),
			slog.String("node", string(s.Node)),
		)
		b.sessions.Delete(k)
		return nil
	}

	// next is stored even when err is set; the step's writes already happened.
	next, err := step(ctx, c, s)
	if next.idle() {
		b.sessions.Delete(k)
	} else {
		b.sessions.Put(k, next)
	}
	logger.Debug(ctx, logger.CompConv, "conv.transition",
		slog.String("flow", string(s.Flow)),
		slog.String("node", string(s.Node)),
		slog.String("next", string(next.Node)),
	)
	if err != nil {
		return fmt.Errorf("%s/%s: %w", s.Flow, s.Node, err)
	}
	return nil
}

// fieldKeyboard offers every editable field plus /cancel, one per row.
func fieldKeyboard() *tele.ReplyMarkup {
	labels := make([]string, 0, len(store.Fields)+1)
	for _, f := range store.Fields {
		labels = append(labels, f.Label())
	}
	return keyboard.ReplyButtonsNPerRow(append(labels, "/cancel"), 1)
}

func reportRef(id int64) string {
	return format.Bold("#" + strconv.FormatInt(id, 10))
}

// messageText is the text of a text message. Unlike c.Text it ignores
// media captions.
func messageText(c tele.Context) string {
	if msg := c.Message(); msg != nil {
		return msg.Text
	}
	return ""
}

// parseID accepts "12" and "#12".
func parseID(text string) (int64, bool) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// forwardOrigin returns the author of a forwarded message. ok is false for
// messages that are not forwards; hidden is set when the author hid their
// account.
func forwardOrigin(c tele.Context) (who store.Identity, hidden, ok bool) {
	u, forwarded := tghelpers.ForwardOrigin(c.Message())
	switch {
	case !forwarded:
		return store.Identity{}, false, false
	case u == nil:
		return store.Identity{}, true, true
	}
	return identityOf(u), false, true
}

func (b *Bot) createReport(ctx context.Context, c tele.Context, s session) (session, error) {
	from, hidden, ok := forwardOrigin(c)
	switch {
	case !ok:
		return s, nil
	case hidden:
		return s, tghelpers.SendPlain(c, msgForwardHidden)
	}

	rep, created, err := b.store.CreateReport(ctx, c.Sender().ID, from)
	if err != nil {
		return s, err
	}
	if created {
		b.track(ctx, c.Sender().ID, analytics.EventNewReporter)
	}
	b.track(ctx, c.Sender().ID, analytics.EventNewReport)
	logger.Info(ctx, logger.CompConv, "report.created",
		slog.Int64("report_id", rep.ID),
		slog.Bool("new_reporter", created),
	)

	next := s.at(nodeSelectField)
	next.ReportID = rep.ID
	return next, tghelpers.SendHTML(c, fmt.Sprintf(msgReportCreated, reportRef(rep.ID)), fieldKeyboard())
}

func (b *Bot) pickReportToEdit(ctx context.Context, c tele.Context, s session) (session, error) {
	id, ok := parseID(messageText(c))
	if !ok {
		return s, tghelpers.SendPlain(c, msgBadReportID, keyboard.ForceReply())
	}
	rep, err := b.store.Report(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return s, tghelpers.SendPlain(c, msgReportNotFound, keyboard.ForceReply())
	}
	if err != nil {
		return s, err
	}

	next := s.at(nodeSelectField)
	next.ReportID = rep.ID
	text := search.RenderHTML(rep) + "\n\n" + format.Escape(msgEditPick)
	return next, tghelpers.SendHTML(c, text, fieldKeyboard())
}

func (b *Bot) deleteReport(ctx context.Context, c tele.Context, s session) (session, error) {
	id, ok := parseID(messageText(c))
	if !ok {
		return s, tghelpers.SendPlain(c, msgBadReportID, keyboard.ForceReply())
	}
	deleted, err := b.store.DeleteReport(ctx, id)
	if err != nil {
		return s, err
	}
	if !deleted {
		return s, tghelpers.SendPlain(c, msgReportNotFound, keyboard.ForceReply())
	}
	return idle, tghelpers.SendHTML(c, fmt.Sprintf(msgReportDeleted, reportRef(id)), keyboard.RemoveKeyboard())
}

func (b *Bot) selectField(_ context.Context, c tele.Context, s session) (session, error) {
	field, ok := store.FieldByLabel(strings.TrimSpace(messageText(c)))
	if !ok {
		return s, tghelpers.SendPlain(c, msgChooseField, fieldKeyboard())
	}
	next := s.at(nodeAwaitValue)
	next.Field = field
	prompt := fmt.Sprintf(msgEnterField, field.Label())
	if field == store.FieldAttachment {
		prompt = msgSendAttachment
	}
	return next, tghelpers.SendPlain(c, prompt, keyboard.ForceReply())
}

// fieldValue extracts the value for field from the message. ok is false when
// the message carries the wrong kind of content.
func fieldValue(msg *tele.Message, field store.Field) (string, bool) {
	if msg == nil {
		return "", false
	}
	if field == store.FieldAttachment {
		switch {
		case msg.Photo != nil:
			return store.FormatAttachment(store.AttachmentPhoto, msg.Photo.FileID), true
		case msg.Document != nil:
			return store.FormatAttachment(store.AttachmentDocument, msg.Document.FileID), true
		}
		return "", false
	}
	if msg.Text == "" {
		return "", false
	}
	return msg.Text, true
}

func (b *Bot) writeField(ctx context.Context, c tele.Context, s session) (session, error) {
	value, ok := fieldValue(c.Message(), s.Field)
	if !ok {
		if s.Field == store.FieldAttachment {
			return s, tghelpers.SendPlain(c, msgWantAttachment, keyboard.ForceReply())
		}
		return s, tghelpers.SendPlain(c, fmt.Sprintf(msgWantText, s.Field.Label()), keyboard.ForceReply())
	}

	err := b.store.UpdateField(ctx, s.ReportID, s.Field, value)
	if errors.Is(err, store.ErrNotFound) {
		return idle, tghelpers.SendPlain(c, msgReportGone, keyboard.RemoveKeyboard())
	}
	if err != nil {
		return s, err
	}
	logger.Info(ctx, logger.CompConv, "report.field_set",
		slog.Int64("report_id", s.ReportID),
		slog.String("field", string(s.Field)),
	)

	next := s.at(nodeSelectField)
	next.Field = ""
	return next, tghelpers.SendPlain(c, msgFieldSaved, fieldKeyboard())
}

func (b *Bot) addOperator(ctx context.Context, c tele.Context, s session) (session, error) {
	who, hidden, ok := forwardOrigin(c)
	switch {
	case !ok:
		return s, nil
	case hidden:
		return s, tghelpers.SendPlain(c, msgForwardHidden)
	}

	added, err := b.store.AddOperator(ctx, who, false)
	if err != nil {
		return s, err
	}
	if !added {
		return idle, tghelpers.SendPlain(c, msgOperatorExists)
	}
	logger.Info(ctx, logger.CompConv, "operator.added",
		slog.Int64("operator_id", who.ID),
		slog.String("name", logger.SanitizeLimit(who.DisplayName(), 64)),
	)
	return idle, tghelpers.SendPlain(c, msgOperatorAdded)
}

// removeOperator accepts a forward from the operator or their numeric id.
func (b *Bot) removeOperator(ctx context.Context, c tele.Context, s session) (session, error) {
	var id int64
	who, hidden, forwarded := forwardOrigin(c)
	switch {
	case hidden:
		return s, tghelpers.SendPlain(c, msgForwardHidden)
	case forwarded:
		id = who.ID
	default:
		var ok bool
		if id, ok = parseID(messageText(c)); !ok {
			return s, tghelpers.SendPlain(c, msgBadUserID)
		}
	}

	res, err := b.store.RemoveOperator(ctx, id)
	if err != nil {
		return s, err
	}
	switch res {
	case store.OperatorRemoved:
		logger.Info(ctx, logger.CompConv, "operator.removed", slog.Int64("operator_id", id))
		return idle, tghelpers.SendPlain(c, msgOperatorRemoved)
	case store.OperatorProtected:
		return idle, tghelpers.SendPlain(c, msgOperatorProtected)
	}
	return s, tghelpers.SendPlain(c, msgNotOperator)
}
