package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/pkg/paginator"
	"github.com/rs/zerolog"
)

// TelegramAPI is the subset of the Bot API used to send and edit messages.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ExtraDisableNotification is the Target.Extra key for silent sends.
const ExtraDisableNotification = "disable_notification"

// Messenger renders paginator pages as Telegram messages with inline keyboards.
type Messenger struct {
	api    TelegramAPI
	logger zerolog.Logger
}

var _ paginator.Messenger = (*Messenger)(nil)

// NewMessenger creates a Messenger over the given API client.
func NewMessenger(api TelegramAPI, logger zerolog.Logger) *Messenger {
	return &Messenger{
		api:    api,
		logger: logger.With().Str("module", "messenger").Logger(),
	}
}

// SendPage sends a page to target.ChannelID, replying to target.ReplyTo when set.
func (m *Messenger) SendPage(ctx context.Context, target paginator.Target, page paginator.Page, view *paginator.View) (paginator.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return paginator.MessageRef{}, err
	}

	chatID, err := strconv.ParseInt(target.ChannelID, 10, 64)
	if err != nil {
		return paginator.MessageRef{}, fmt.Errorf("invalid chat id %q: %w", target.ChannelID, err)
	}

	msg := tgbotapi.NewMessage(chatID, RenderText(page))
	msg.ParseMode = tgbotapi.ModeHTML
	if target.ReplyTo != "" {
		if replyTo, err := strconv.Atoi(target.ReplyTo); err == nil {
			msg.ReplyToMessageID = replyTo
			msg.AllowSendingWithoutReply = true
		}
	}
	if v, ok := target.Extra[ExtraDisableNotification].(bool); ok {
		msg.DisableNotification = v
	}
	if view != nil {
		msg.ReplyMarkup = RenderKeyboard(*view)
	}

	sent, err := m.api.Send(msg)
	if err != nil {
		return paginator.MessageRef{}, classifyError(err)
	}

	ref := paginator.MessageRef{
		MessageID: FormatMessageID(chatID, sent.MessageID),
		ChannelID: target.ChannelID,
		GuildID:   target.GuildID,
	}

	m.logger.Debug().
		Int64("chat_id", chatID).
		Str("message_id", ref.MessageID).
		Bool("controls", view != nil).
		Msg("Page sent")

	return ref, nil
}

// EditPage replaces the text and keyboard of an existing message.
func (m *Messenger) EditPage(ctx context.Context, ref paginator.MessageRef, page paginator.Page, view *paginator.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, messageID, err := ParseMessageID(ref.MessageID)
	if err != nil {
		return err
	}

	var edit tgbotapi.EditMessageTextConfig
	if view != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, RenderText(page), RenderKeyboard(*view))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, RenderText(page))
	}
	edit.ParseMode = tgbotapi.ModeHTML

	if _, err := m.api.Request(edit); err != nil {
		return classifyError(err)
	}
	return nil
}

// ClearControls removes the inline keyboard of a message, leaving its text.
func (m *Messenger) ClearControls(ctx context.Context, ref paginator.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, messageID, err := ParseMessageID(ref.MessageID)
	if err != nil {
		return err
	}

	if _, err := m.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, emptyKeyboard())); err != nil {
		return classifyError(err)
	}
	return nil
}

// Acknowledge answers the callback query so the client stops its spinner.
func (m *Messenger) Acknowledge(ctx context.Context, in paginator.Interaction) error {
	if in.ID == "" {
		return nil
	}
	if _, err := m.api.Request(tgbotapi.NewCallback(in.ID, "")); err != nil {
		return classifyError(err)
	}
	return nil
}

// goneMarkers are Bot API descriptions meaning the message cannot be edited
// any more.
var goneMarkers = []string{
	"message to edit not found",
	"message can't be edited",
	"message to delete not found",
	"message_id_invalid",
	"chat not found",
	"bot was kicked",
	"bot was blocked",
	"not enough rights",
	"have no rights",
}

// classifyError maps Bot API failures onto paginator sentinels. "Message is
// not modified" is reported by Telegram when the edit is a no-op and is
// treated as success.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	code, description, ok := apiError(err)
	if !ok {
		return err
	}

	lower := strings.ToLower(description)
	if strings.Contains(lower, "message is not modified") {
		return nil
	}
	if code == 403 {
		return fmt.Errorf("%w: %s", paginator.ErrMessageGone, description)
	}
	for _, marker := range goneMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", paginator.ErrMessageGone, description)
		}
	}
	return err
}

func apiError(err error) (int, string, bool) {
	var ptr *tgbotapi.Error
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, ptr.Message, true
	}
	return 0, "", false
}
