package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"
	"github.com/m3rciful/trustbot/core/telegram/keyboard"
	"github.com/m3rciful/trustbot/internal/analytics"
	"github.com/m3rciful/trustbot/internal/search"
	"github.com/m3rciful/trustbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) onSearch(c tele.Context) error {
	b.begin(c, session{Flow: flowSearch, Node: nodeAwaitQuery, IssuedAt: b.now()})
	return tghelpers.SendPlain(c, msgSearchPrompt, keyboard.ForceReply())
}

// runSearch answers the query sent after /search.
func (b *Bot) runSearch(ctx context.Context, c tele.Context, s session) (session, error) {
	if b.now().Sub(s.IssuedAt) > b.window {
		logger.Debug(ctx, logger.CompSearch, "search.late", slog.String("outcome", "expired"))
		return idle, tghelpers.SendPlain(c, fmt.Sprintf(msgSearchLate, int(b.window.Seconds())))
	}
	text := messageText(c)
	if strings.TrimSpace(text) == "" {
		return s, tghelpers.SendPlain(c, msgSearchText, keyboard.ForceReply())
	}
	query := search.NormalizeQuery(text)
	if !search.QueryFits(query) {
		s.IssuedAt = b.now()
		return s, tghelpers.SendPlain(c, msgSearchTooLong, keyboard.ForceReply())
	}

	out, found, err := b.engine.Start(ctx, query, identityOf(c.Sender()))
	if err != nil {
		return s, err
	}
	b.track(ctx, c.Sender().ID, analytics.EventSearch)
	if !found {
		return idle, tghelpers.SendPlain(c, msgNoResults)
	}
	markup, err := search.Keyboard(out.View)
	if err != nil {
		return idle, err
	}
	return idle, tghelpers.SendHTML(c, out.Text, markup)
}

// onSearchButton applies a result button press and edits the message in place.
func (b *Bot) onSearchButton(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	v, err := search.Decode(callbacks.CallbackPayload(c))
	if err != nil {
		logger.Warn(ctx, logger.CompSearch, "payload.malformed", logger.Err(err))
		return tghelpers.Answer(c, search.NoticeNotFound)
	}

	out, err := b.engine.Apply(ctx, v, identityOf(c.Sender()))
	if err != nil {
		return err
	}
	if out.NewReporter {
		b.track(ctx, c.Sender().ID, analytics.EventNewReporter)
	}
	logger.Debug(ctx, logger.CompSearch, "search.action",
		slog.String("act", string(v.Action)),
		slog.Int("offset", out.View.Offset),
		slog.Bool("confirmed", out.View.Confirmed),
	)
	if err := tghelpers.Answer(c, out.Notice); err != nil {
		logger.Warn(ctx, logger.CompSearch, "answer.fail", logger.Err(err))
	}
	if !out.Changed {
		return nil
	}

	markup, err := search.Keyboard(out.View)
	if err != nil {
		return err
	}
	if out.Text != "" {
		err = tghelpers.EditHTML(c, out.Text, markup)
	} else {
		err = tghelpers.EditMarkup(c, markup)
	}
	if err != nil && !errors.Is(err, tele.ErrSameMessageContent) {
		return err
	}

	switch {
	case out.Attachment != nil:
		return tghelpers.ReplyMedia(c, attachmentMedia(*out.Attachment))
	case len(out.Export) > 0:
		return tghelpers.SendDocumentBytes(c, search.ExportFileName, out.Export)
	}
	return nil
}

func attachmentMedia(a search.Attachment) tele.Sendable {
	file := tele.File{FileID: a.Ref}
	if a.Kind == store.AttachmentPhoto {
		return &tele.Photo{File: file}
	}
	return &tele.Document{File: file}
}
