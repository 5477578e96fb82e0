// Package extract turns uploaded documents into raw text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for extensions no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Extractor converts document bytes into text.
type Extractor interface {
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// Router picks an extractor by file extension: PDFs go to the text-layer
// reader, images to OCR.
type Router struct {
	pdf Extractor
	ocr Extractor
}

func NewRouter(pdf, ocr Extractor) *Router {
	return &Router{pdf: pdf, ocr: ocr}
}

func (r *Router) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf":
		return r.pdf.Extract(ctx, content, filename)
	case imageExtensions[ext]:
		return r.ocr.Extract(ctx, content, filename)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
