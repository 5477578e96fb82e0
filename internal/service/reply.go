package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback data for the static buttons.
const (
	ActionRegister         = "REGISTER"
	ActionPlay             = "PLAY"
	ActionAdminLogin       = "ADMIN_LOGIN"
	ActionAdminMenu        = "ADMIN_MENU"
	ActionAddQuestionMenu  = "ADD_QUESTION_MENU"
	ActionAddFileQuestions = "ADD_FILE_QUESTIONS"
	ActionAddTextQuestions = "ADD_TEXT_QUESTIONS"
	ActionShowUsers        = "SHOW_USERS"
	ActionShowAnswers      = "SHOW_ANSWERS"
	ActionClearQuestions   = "CLEAR_QUESTIONS"
)

// Prefixes of per-session control buttons: "<prefix>:<owner>:<index>".
const (
	ControlAnswer = "answer"
	ControlNext   = "next"
)

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Label string
	Data  string
}

// Reply is what the transport sends back for one handled event.
// Text may be empty when only a callback toast is due.
type Reply struct {
	Text    string
	Buttons [][]Button
	Toast   string
}

func textReply(text string) Reply {
	return Reply{Text: text}
}

func (r Reply) withButtons(rows ...[]Button) Reply {
	r.Buttons = rows
	return r
}

func (r Reply) withToast(toast string) Reply {
	r.Toast = toast
	return r
}

func row(buttons ...Button) []Button {
	return buttons
}

// ControlRef identifies the session and question a control button was rendered for.
type ControlRef struct {
	Kind  string
	Owner int64
	Index int
}

// Data encodes the reference as callback data.
func (c ControlRef) Data() string {
	return fmt.Sprintf("%s:%d:%d", c.Kind, c.Owner, c.Index)
}

// ParseControlRef decodes callback data produced by ControlRef.Data.
func ParseControlRef(data string) (ControlRef, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return ControlRef{}, false
	}
	if parts[0] != ControlAnswer && parts[0] != ControlNext {
		return ControlRef{}, false
	}
	owner, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ControlRef{}, false
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil || index < 0 {
		return ControlRef{}, false
	}
	return ControlRef{Kind: parts[0], Owner: owner, Index: index}, true
}

func answerButton(owner int64, index int) Button {
	return Button{Label: "✍️ Answer", Data: ControlRef{Kind: ControlAnswer, Owner: owner, Index: index}.Data()}
}

func nextButton(owner int64, index int) Button {
	return Button{Label: "➡️ Next question", Data: ControlRef{Kind: ControlNext, Owner: owner, Index: index}.Data()}
}

// MainMenu is the greeting shown on /start.
func MainMenu(firstName string) Reply {
	if firstName == "" {
		firstName = "there"
	}
	return textReply(fmt.Sprintf("Hello, %s!\nThis is ExamBot 🤖.\nUse the buttons below to get started.", firstName)).
		withButtons(
			row(Button{Label: "📝 Register", Data: ActionRegister}),
			row(Button{Label: "🎮 Start the quiz", Data: ActionPlay}),
			row(Button{Label: "⚙️ Admin login", Data: ActionAdminLogin}),
		)
}

func adminMenuButtons() [][]Button {
	return [][]Button{
		row(Button{Label: "➕ Add questions (file/text)", Data: ActionAddQuestionMenu}),
		row(Button{Label: "👥 Users", Data: ActionShowUsers}),
		row(Button{Label: "📋 Answers", Data: ActionShowAnswers}),
		row(Button{Label: "🗑 Clear questions", Data: ActionClearQuestions}),
	}
}

func backToAdminMenu() []Button {
	return row(Button{Label: "⚙️ Admin menu", Data: ActionAdminMenu})
}
