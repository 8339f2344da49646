package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

// fakeParser builds documents from a tiny line format instead of PDF bytes:
// "size|page|y|text" per line. The bodies "fail" and "panic" misbehave.
type fakeParser struct{}

func (fakeParser) Parse(_ context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(string(data))
	switch body {
	case "fail":
		return nil, errors.New("broken xref table")
	case "panic":
		panic("corrupt stream")
	}

	doc := &doctree.Document{Name: filepath.Base(filename)}
	for _, line := range strings.Split(body, "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		span := doctree.TextSpan{Text: parts[3], FontSize: atof(parts[0]), Page: int(atof(parts[1])), Y: atof(parts[2])}
		for len(doc.Pages) < span.Page {
			doc.Pages = append(doc.Pages, nil)
		}
		doc.Pages[span.Page-1] = append(doc.Pages[span.Page-1], span)
	}
	return doc, nil
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func fakeParsers(string) (parser.Parser, error) {
	return fakeParser{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const reportDoc = `24|1|50|Annual Report
18|1|100|Introduction
12|1|150|Some body text
18|2|40|Results`
