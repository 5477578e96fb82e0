package telegram

import (
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoluyanbIch/exambot/internal/service"
)

// Telegram measures message length in UTF-16 code units.
const maxMessageUnits = 4096

// render turns a reply into one or more messages; buttons go on the last one.
func render(chatID int64, reply service.Reply) []tgbotapi.MessageConfig {
	if reply.Text == "" {
		return nil
	}

	chunks := splitText(reply.Text, maxMessageUnits)
	msgs := make([]tgbotapi.MessageConfig, 0, len(chunks))
	for _, chunk := range chunks {
		msgs = append(msgs, tgbotapi.NewMessage(chatID, chunk))
	}

	if len(reply.Buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Buttons))
		for _, r := range reply.Buttons {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
			for _, btn := range r {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		msgs[len(msgs)-1].ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return msgs
}

// splitText cuts text into chunks of at most limit UTF-16 units, preferring
// line breaks.
func splitText(text string, limit int) []string {
	runes := []rune(text)
	if utf16Len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		end, units, lastNewline := 0, 0, -1
		for end < len(runes) {
			n := runeUnits(runes[end])
			if units+n > limit {
				break
			}
			if runes[end] == '\n' {
				lastNewline = end
			}
			units += n
			end++
		}
		if end == len(runes) {
			chunks = append(chunks, string(runes))
			break
		}
		if end == 0 {
			end = 1
		}

		cut := end
		if lastNewline > 0 {
			cut = lastNewline
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}
	return chunks
}

func utf16Len(runes []rune) int {
	n := 0
	for _, r := range runes {
		n += runeUnits(r)
	}
	return n
}

// runeUnits counts invalid runes as the single-unit replacement character.
func runeUnits(r rune) int {
	if n := len(utf16.Encode([]rune{r})); n > 0 {
		return n
	}
	return 1
}
