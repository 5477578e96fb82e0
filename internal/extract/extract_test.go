package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text  string
	err   error
	calls []string
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, filename string) (string, error) {
	s.calls = append(s.calls, filename)
	return s.text, s.err
}

func TestRouter_Extract(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "exam.pdf", want: "pdf"},
		{filename: "EXAM.PDF", want: "pdf"},
		{filename: "photo.jpg", want: "ocr"},
		{filename: "scan.JPEG", want: "ocr"},
		{filename: "scan.png", want: "ocr"},
		{filename: "scan.webp", want: "ocr"},
		{filename: "scan.tiff", want: "ocr"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			router := NewRouter(&stubExtractor{text: "pdf"}, &stubExtractor{text: "ocr"})
			got, err := router.Extract(context.Background(), []byte("x"), tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_UnsupportedFormat(t *testing.T) {
	pdf, ocr := &stubExtractor{}, &stubExtractor{}
	router := NewRouter(pdf, ocr)

	for _, name := range []string{"notes.docx", "archive.zip", "noext"} {
		_, err := router.Extract(context.Background(), []byte("x"), name)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
	assert.Empty(t, pdf.calls)
	assert.Empty(t, ocr.calls)
}

func TestRouter_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	router := NewRouter(&stubExtractor{err: boom}, &stubExtractor{})

	_, err := router.Extract(context.Background(), nil, "a.pdf")
	assert.ErrorIs(t, err, boom)
}

func TestPDF_RejectsInvalidDocument(t *testing.T) {
	_, err := NewPDF().Extract(context.Background(), []byte("definitely not a pdf"), "a.pdf")
	assert.Error(t, err)
}

// fakeTesseract writes a shell script standing in for the tesseract binary.
func fakeTesseract(t *testing.T, script string) *Tesseract {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "tesseract")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	ocr := NewTesseract(bin, "rus")
	ocr.tempDir = t.TempDir()
	return ocr
}

func TestTesseract_Extract(t *testing.T) {
	ocr := fakeTesseract(t, `[ "$2" = "stdout" ] && [ "$4" = "rus" ] && [ -f "$1" ] && printf '1. Scanned question?\n'`)

	text, err := ocr.Extract(context.Background(), []byte("image bytes"), "scan.PNG")
	require.NoError(t, err)
	assert.Equal(t, "1. Scanned question?\n", text)

	entries, err := os.ReadDir(ocr.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary input must be removed")
}

func TestTesseract_Failure(t *testing.T) {
	ocr := fakeTesseract(t, `echo "Error in pixReadStream" >&2; exit 1`)

	_, err := ocr.Extract(context.Background(), []byte("garbage"), "scan.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error in pixReadStream")
}

func TestNewTesseract_Defaults(t *testing.T) {
	ocr := NewTesseract("", "")
	assert.Equal(t, "tesseract", ocr.binary)
	assert.Equal(t, "eng", ocr.language)
}
