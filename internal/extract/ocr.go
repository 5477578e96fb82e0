package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Tesseract runs the tesseract CLI on images. Output is best effort and may
// be empty or noisy.
type Tesseract struct {
	binary   string
	language string
	tempDir  string
}

func NewTesseract(binary, language string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{binary: binary, language: language, tempDir: os.TempDir()}
}

func (t *Tesseract) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	input := filepath.Join(t.tempDir, "exambot-ocr-"+uuid.NewString()+ext)
	if err := os.WriteFile(input, content, 0o600); err != nil {
		return "", fmt.Errorf("write ocr input: %w", err)
	}
	defer os.Remove(input)

	var stdout, stderr bytes.Buffer
	// "stdout" as the output base makes tesseract print the text instead of writing a file.
	cmd := exec.CommandContext(ctx, t.binary, input, "stdout", "-l", t.language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
