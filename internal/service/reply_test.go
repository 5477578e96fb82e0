package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseControlRef(t *testing.T) {
	tests := []struct {
		data string
		want ControlRef
		ok   bool
	}{
		{data: "answer:42:0", want: ControlRef{Kind: ControlAnswer, Owner: 42, Index: 0}, ok: true},
		{data: "next:-1001:7", want: ControlRef{Kind: ControlNext, Owner: -1001, Index: 7}, ok: true},
		{data: "next:42", ok: false},
		{data: "skip:42:1", ok: false},
		{data: "answer:abc:1", ok: false},
		{data: "answer:42:-1", ok: false},
		{data: "answer:42:1:extra", ok: false},
		{data: ActionPlay, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, ok := ParseControlRef(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestControlRefData(t *testing.T) {
	ref := ControlRef{Kind: ControlNext, Owner: 5, Index: 3}
	assert.Equal(t, "next:5:3", ref.Data())

	parsed, ok := ParseControlRef(ref.Data())
	assert.True(t, ok)
	assert.Equal(t, ref, parsed)
}

func TestMainMenu(t *testing.T) {
	menu := MainMenu("")
	assert.Contains(t, menu.Text, "Hello, there!")
	assert.Len(t, menu.Buttons, 3)
	assert.Equal(t, ActionRegister, menu.Buttons[0][0].Data)
}

func TestUploadNotice(t *testing.T) {
	assert.Equal(t, "⏳ PDF file is being downloaded and analysed...", UploadNotice(FileRef{Name: "a.pdf"}).Text)
	assert.Equal(t, "⏳ The file is being downloaded and analysed...", UploadNotice(FileRef{Name: "noext"}).Text)
}
