package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// FileRef points at an uploaded file on the chat transport.
type FileRef struct {
	ID   string
	Name string
}

// Ext returns the lower-cased file extension including the dot.
func (f FileRef) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// FileFetcher downloads uploaded files by transport reference.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// TextExtractor turns binary documents (PDF, images) into best-effort text.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

// Ingestor normalizes uploads and pasted text into question lists.
type Ingestor struct {
	fetcher   FileFetcher
	extractor TextExtractor
}

func NewIngestor(fetcher FileFetcher, extractor TextExtractor) *Ingestor {
	return &Ingestor{fetcher: fetcher, extractor: extractor}
}

// RawText downloads the file and returns its text. Plain .txt files are used
// verbatim; everything else goes through the extractor.
func (i *Ingestor) RawText(ctx context.Context, ref FileRef) (string, error) {
	content, err := i.fetcher.Fetch(ctx, ref.ID)
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %w", ErrIngestionFailure, ref.Name, err)
	}

	if ref.Ext() == ".txt" {
		return string(content), nil
	}

	text, err := i.extractor.Extract(ctx, content, ref.Name)
	if err != nil {
		return "", fmt.Errorf("%w: extract %s: %w", ErrIngestionFailure, ref.Name, err)
	}
	return text, nil
}

// FromFile runs the whole pipeline for an uploaded file.
func (i *Ingestor) FromFile(ctx context.Context, ref FileRef) ([]string, error) {
	raw, err := i.RawText(ctx, ref)
	if err != nil {
		return nil, err
	}
	return FromText(raw)
}

// FromText extracts questions from pasted text; an empty result is an error.
func FromText(raw string) ([]string, error) {
	questions := ExtractQuestions(raw)
	if len(questions) == 0 {
		return nil, ErrNoQuestionsFound
	}
	return questions, nil
}
