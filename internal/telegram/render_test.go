package telegram

import (
	"strings"
	"testing"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoluyanbIch/exambot/internal/service"
)

func TestRender(t *testing.T) {
	assert.Empty(t, render(1, service.Reply{Toast: "only a toast"}))

	msgs := render(7, service.Reply{
		Text:    "pick one",
		Buttons: [][]service.Button{{{Label: "A", Data: "a"}, {Label: "B", Data: "b"}}, {{Label: "C", Data: "c"}}},
	})
	require.Len(t, msgs, 1)
	markup, ok := msgs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "c", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestRender_LongTextKeepsButtonsOnLastMessage(t *testing.T) {
	line := strings.Repeat("я", 99)
	text := strings.TrimSuffix(strings.Repeat(line+"\n", 100), "\n")

	msgs := render(7, service.Reply{Text: text, Buttons: [][]service.Button{{{Label: "A", Data: "a"}}}})

	require.Len(t, msgs, 3)
	assert.Nil(t, msgs[0].ReplyMarkup)
	assert.NotNil(t, msgs[2].ReplyMarkup)
	var total int
	for _, m := range msgs {
		assert.LessOrEqual(t, len(utf16.Encode([]rune(m.Text))), maxMessageUnits)
		total += len(strings.Split(m.Text, "\n"))
	}
	assert.Equal(t, 100, total)
}

func TestSplitText_HardCut(t *testing.T) {
	chunks := splitText(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), "xxxxx"}, chunks)
}

func TestSplitText_CountsUTF16Units(t *testing.T) {
	text := strings.Repeat("😀", 3000)

	chunks := splitText(text, maxMessageUnits)

	require.Len(t, chunks, 2)
	assert.Len(t, []rune(chunks[0]), 2048)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(utf16.Encode([]rune(chunk))), maxMessageUnits)
	}
}

func TestRender_AnswerPreviewWithEmoji(t *testing.T) {
	var parts []string
	for i := 0; i < 20; i++ {
		parts = append(parts, "👤 Sam\n❓ 1. Question?\n💬 "+strings.Repeat("🙂", 150))
	}
	text := strings.Join(parts, "\n\n--- o ---\n\n")
	require.Less(t, len([]rune(text)), maxMessageUnits)

	msgs := render(7, service.Reply{Text: text})

	require.Greater(t, len(msgs), 1)
	for _, m := range msgs {
		assert.LessOrEqual(t, len(utf16.Encode([]rune(m.Text))), maxMessageUnits)
		assert.False(t, strings.HasPrefix(m.Text, "\n"))
	}
}

func TestSplitText_LimitSmallerThanRune(t *testing.T) {
	assert.Equal(t, []string{"😀", "😀"}, splitText("😀😀", 1))
}
