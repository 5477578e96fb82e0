package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF reads the text layer of a PDF document. Scanned PDFs without a text
// layer yield empty text, which callers treat as "no questions".
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

func (PDF) Extract(ctx context.Context, content []byte, _ string) (text string, err error) {
	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		// One row per visual line keeps numbered questions on their own lines.
		for _, row := range rows {
			for _, text := range row.Content {
				sb.WriteString(text.S)
			}
			sb.WriteByte('\n')
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return plainText(reader)
	}
	return sb.String(), nil
}

// plainText falls back to the library's whole-document reader.
func plainText(reader *pdf.Reader) (string, error) {
	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
