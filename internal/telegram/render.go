package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/pagina/pkg/paginator"
)

// jumpListRowSize is the number of jump-list entries per keyboard row.
const jumpListRowSize = 5

// RenderText renders page content as Telegram HTML. Color has no Telegram
// equivalent and is dropped.
func RenderText(page paginator.Page) string {
	content := page.Content
	var sb strings.Builder

	if title := content.Title(); title != "" {
		sb.WriteString("<b>")
		sb.WriteString(escape(title))
		sb.WriteString("</b>\n")
	}
	if desc := content.Description(); desc != "" {
		sb.WriteString(escape(desc))
		sb.WriteString("\n")
	}

	fields := content.Fields()
	if len(fields) > 0 {
		sb.WriteString("\n")
		for _, f := range fields {
			sb.WriteString("<b>")
			sb.WriteString(escape(f.Name))
			sb.WriteString("</b>: ")
			sb.WriteString(escape(f.Value))
			sb.WriteString("\n")
		}
	}

	if footer := content.FooterText(); footer != "" {
		sb.WriteString("\n<i>")
		sb.WriteString(escape(footer))
		sb.WriteString("</i>")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		// Telegram rejects empty messages.
		text = escape(page.Label())
	}
	return text
}

// RenderKeyboard renders a view as an inline keyboard: the five navigation
// buttons on one row, then the jump-list in rows of five.
func RenderKeyboard(view paginator.View) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 1+(len(view.JumpList.Options)+jumpListRowSize-1)/jumpListRowSize)

	nav := make([]tgbotapi.InlineKeyboardButton, 0, len(view.Buttons))
	for _, b := range view.Buttons {
		label := b.Emoji + " " + b.Label
		if b.Disabled {
			label = "· " + label + " ·"
		}
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(label, b.ID))
	}
	rows = append(rows, nav)

	var row []tgbotapi.InlineKeyboardButton
	for _, opt := range view.JumpList.Options {
		label := opt.Label
		if opt.Default {
			label = "• " + label + " •"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, JumpListData(view.JumpList.ID, opt.Value)))
		if len(row) == jumpListRowSize {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// emptyKeyboard removes every button from a message.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0),
	}
}

// JumpListData encodes a jump-list selection as callback data.
func JumpListData(listID, value string) string {
	return listID + ":" + value
}

// SplitCallbackData separates a control identifier from its selected value.
func SplitCallbackData(data string) (customID string, values []string) {
	idx := strings.LastIndex(data, ":")
	if idx < 0 {
		return data, nil
	}
	return data[:idx], []string{data[idx+1:]}
}

// FormatMessageID builds the chat-unique message identifier used as the
// session key.
func FormatMessageID(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

// ParseMessageID is the inverse of FormatMessageID.
func ParseMessageID(id string) (chatID int64, messageID int, err error) {
	chatPart, msgPart, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed message id %q", id)
	}
	chatID, err = strconv.ParseInt(chatPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed chat id in %q: %w", id, err)
	}
	messageID, err = strconv.Atoi(msgPart)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed message id in %q: %w", id, err)
	}
	return chatID, messageID, nil
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
