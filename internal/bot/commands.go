package bot

import (
	"bytes"
	"strings"

	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/core/telegram/format"
	tghelpers "github.com/m3rciful/trustbot/core/telegram/helpers"
	"github.com/m3rciful/trustbot/core/telegram/keyboard"
	"github.com/m3rciful/trustbot/core/telegram/state"
	"github.com/m3rciful/trustbot/internal/roles"

	tele "gopkg.in/telebot.v4"
)

var helpSections = []struct {
	role  roles.Role
	title string
}{
	{roles.Anonymous, "Usage:"},
	{roles.Operator, "Operator commands:"},
	{roles.SuperOperator, "Super operator commands:"},
}

func (b *Bot) onHelp(c tele.Context) error {
	role, err := b.role(c)
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, b.helpText(role))
}

// helpText lists the registered commands the role may run, one section per level.
func (b *Bot) helpText(role roles.Role) string {
	var sb strings.Builder
	sb.WriteString(format.Escape(msgHelpIntro))
	for _, sec := range helpSections {
		if !role.AtLeast(sec.role) || b.reg == nil {
			continue
		}
		entries := b.reg.CommandsAtLevel(int(sec.role))
		if len(entries) == 0 {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(format.Bold(sec.title))
		for _, e := range entries {
			sb.WriteString("\n" + e.Name + " - " + format.Escape(e.Description))
		}
	}
	return sb.String()
}

func (b *Bot) onCancel(c tele.Context) error {
	k, ok := state.KeyOf(c)
	if !ok {
		return nil
	}
	if s, ok := b.sessions.Get(k); !ok || s.idle() {
		return nil
	}
	b.sessions.Delete(k)
	return tghelpers.SendPlain(c, msgCanceled, keyboard.RemoveKeyboard())
}

func (b *Bot) onNewReport(c tele.Context) error {
	b.begin(c, session{Flow: flowNewReport, Node: nodeAwaitForward})
	return tghelpers.SendPlain(c, msgNewReport)
}

func (b *Bot) onEditReport(c tele.Context) error {
	b.begin(c, session{Flow: flowEditReport, Node: nodeAwaitTargetID})
	return tghelpers.SendPlain(c, msgEditReport, keyboard.ForceReply())
}

func (b *Bot) onDeleteReport(c tele.Context) error {
	b.begin(c, session{Flow: flowDeleteReport, Node: nodeAwaitTargetID})
	return tghelpers.SendPlain(c, msgDeleteReport, keyboard.ForceReply())
}

func (b *Bot) onAddOperator(c tele.Context) error {
	b.begin(c, session{Flow: flowAddOperator, Node: nodeAwaitForward})
	return tghelpers.SendPlain(c, msgAddOperator)
}

func (b *Bot) onRemoveOperator(c tele.Context) error {
	b.begin(c, session{Flow: flowRemoveOperator, Node: nodeAwaitTargetID})
	return tghelpers.SendPlain(c, msgRemoveOperator)
}

// onDownloadDatabase sends the whole store as YAML.
func (b *Bot) onDownloadDatabase(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	var buf bytes.Buffer
	if err := b.store.WriteSnapshot(ctx, &buf); err != nil {
		return err
	}
	logger.Info(ctx, logger.CompConv, "snapshot.sent", logger.Size(buf.Len()))
	return tghelpers.SendDocumentBytes(c, snapshotFileName, buf.Bytes())
}
