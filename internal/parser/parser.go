package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ErrUnsupported is returned for files this service cannot collect spans from.
var ErrUnsupported = errors.New("unsupported file type")

// Parser turns raw document bytes into positioned text spans.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// Options configures the parsers returned by ForFile.
type Options struct {
	FallbackMutool bool // retry with mutool stext.json when the native parser fails
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackMutool: opts.FallbackMutool}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Stem returns the file name without directory and extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// cleanSpans drops spans a collector should never have emitted: empty text,
// unusable font sizes, or invalid page numbers.
func cleanSpans(spans []doctree.TextSpan) []doctree.TextSpan {
	out := spans[:0]
	for _, s := range spans {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		if s.FontSize <= 0 || math.IsNaN(s.FontSize) || math.IsInf(s.FontSize, 0) {
			continue
		}
		if s.Page < 1 || math.IsNaN(s.Y) {
			continue
		}
		out = append(out, s)
	}
	return out
}
