package helpers

import (
	"bytes"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// AnsweredKey marks a callback as already answered in tele.Context storage.
const AnsweredKey = "cb_answered"

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, logger.CompSender, "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			logger.Err(err),
		)
		return run()
	}
	return err
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)})
}

// SendPlain sends text with optional reply markup and no parse mode.
func SendPlain(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ReplyMarkup: firstMarkup(markup)})
}

// EditHTML rewrites the message the callback was attached to.
// Edits stay synchronous so consecutive presses apply in order.
func EditHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return c.Edit(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup})
}

// EditMarkup replaces only the inline keyboard of the callback message.
func EditMarkup(c tele.Context, markup *tele.ReplyMarkup) error {
	return c.Edit(markup)
}

// ReplyMedia sends a photo or document (by Telegram file id or reader) as a
// reply to the message the current update refers to.
func ReplyMedia(c tele.Context, what tele.Sendable) error {
	opts := &tele.SendOptions{}
	if msg := c.Message(); msg != nil {
		opts.ReplyTo = msg
	}
	return sendAsync(c, "send.media", "sendMedia", func() error {
		return c.Send(what, opts)
	})
}

// SendDocumentBytes uploads data as a named document.
func SendDocumentBytes(c tele.Context, name string, data []byte) error {
	ctx := BuildContext(c)
	logger.Debug(ctx, logger.CompSender, "send.document", slog.String("file", name), logger.Size(len(data)))
	_ = c.Notify(tele.UploadingDocument)
	return ReplyMedia(c, &tele.Document{File: tele.FromReader(bytes.NewReader(data)), FileName: name})
}

// Answer responds to the current callback with a transient notice and
// records that the callback has been answered.
func Answer(c tele.Context, text string) error {
	c.Set(AnsweredKey, true)
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}

// Answered reports whether Answer already ran for the current update.
func Answered(c tele.Context) bool {
	done, _ := c.Get(AnsweredKey).(bool)
	return done
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
