package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ErrNoMutool is returned when the MuPDF CLI cannot be found.
var ErrNoMutool = errors.New("mutool not found: install mupdf-tools or set $MUPDF_BIN")

var (
	mutoolOnce sync.Once
	mutoolPath string
	mutoolErr  error
)

// discoverMutool searches $MUPDF_BIN, then PATH.
func discoverMutool() (string, error) {
	mutoolOnce.Do(func() {
		var candidates []string
		if env := strings.TrimSpace(os.Getenv("MUPDF_BIN")); env != "" {
			candidates = append(candidates, env)
		}
		exe := "mutool"
		if runtime.GOOS == "windows" {
			exe += ".exe"
		}
		candidates = append(candidates, exe)
		for _, c := range candidates {
			if p, err := exec.LookPath(c); err == nil {
				mutoolPath = p
				return
			}
		}
		mutoolErr = ErrNoMutool
	})
	return mutoolPath, mutoolErr
}

// MutoolParser collects spans from `mutool draw -F stext.json`. Each stext
// line becomes one span. The Info dictionary is not read, so MetadataTitle
// is always empty.
type MutoolParser struct{}

func (p *MutoolParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	bin, err := discoverMutool()
	if err != nil {
		return nil, err
	}

	// mutool reads from a path, so spool the input to a temp file.
	tmp, err := os.CreateTemp("", "docoutline-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, bin, "draw", "-F", "stext.json", "-o", "-", tmpPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mutool: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	doc, err := decodeSText(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	doc.Name = filename
	return doc, nil
}

type stextJSON struct {
	Pages []stextPage `json:"pages"`
}

type stextPage struct {
	Blocks []stextBlock `json:"blocks"`
}

type stextBlock struct {
	Type  string      `json:"type"`
	Lines []stextLine `json:"lines"`
}

type stextBBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type stextLine struct {
	BBox stextBBox `json:"bbox"`
	Font stextFont `json:"font"`
	Text string    `json:"text"`
}

type stextFont struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// decodeSText converts MuPDF structured-text JSON into a Document. stext
// coordinates already grow downward from the page top.
func decodeSText(data []byte) (*doctree.Document, error) {
	var st stextJSON
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode stext json: %w", err)
	}

	doc := &doctree.Document{Pages: make([][]doctree.TextSpan, 0, len(st.Pages))}
	for i, pg := range st.Pages {
		var spans []doctree.TextSpan
		for _, b := range pg.Blocks {
			if b.Type != "" && b.Type != "text" {
				continue
			}
			for _, ln := range b.Lines {
				spans = append(spans, doctree.TextSpan{
					Text:     ln.Text,
					FontSize: ln.Font.Size,
					Page:     i + 1,
					Y:        ln.BBox.Y,
				})
			}
		}
		doc.Pages = append(doc.Pages, cleanSpans(spans))
	}
	return doc, nil
}
