package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// spaceGapRatio is the horizontal gap, as a fraction of the font size,
// above which two glyph runs on a line are separated by a space.
const spaceGapRatio = 0.2

// baselineEpsilon is how far two glyph baselines may differ and still be
// considered the same line.
const baselineEpsilon = 0.01

// PDFParser collects text spans with ledongthuc/pdf. If that fails and
// FallbackMutool is set, it retries with the MuPDF CLI.
type PDFParser struct {
	FallbackMutool bool
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc, err := collectSpans(ctx, data)
	if err != nil && p.FallbackMutool && ctx.Err() == nil {
		doc, err = (&MutoolParser{}).Parse(ctx, bytes.NewReader(data), filename)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf spans: %w", err)
	}
	doc.Name = filename
	return doc, nil
}

// collectSpans opens the PDF from memory and reads metadata and per-page spans.
// The library panics on some malformed inputs; those are returned as errors.
func collectSpans(ctx context.Context, data []byte) (doc *doctree.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("pdf decode panic: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc = &doctree.Document{
		MetadataTitle: metadataTitle(reader),
	}

	numPages := reader.NumPage()
	doc.Pages = make([][]doctree.TextSpan, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, nil)
			continue
		}
		height := pageHeight(page.V)
		texts := page.Content().Text
		doc.Pages = append(doc.Pages, cleanSpans(groupGlyphs(texts, i, height)))
	}
	return doc, nil
}

func metadataTitle(reader *pdflib.Reader) string {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	title := info.Key("Title")
	if title.IsNull() {
		return ""
	}
	return title.Text()
}

// pageHeight returns the top edge of the page's MediaBox, following the
// page tree for inherited boxes. US Letter is assumed when none is set.
func pageHeight(v pdflib.Value) float64 {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(3).Float64()
		}
		v = v.Key("Parent")
	}
	return 792
}

// groupGlyphs merges consecutive glyph runs into spans. A new span begins
// when the font, font size, or baseline changes.
func groupGlyphs(texts []pdflib.Text, pageNum int, height float64) []doctree.TextSpan {
	var (
		spans []doctree.TextSpan
		buf   strings.Builder
		first pdflib.Text
		prev  pdflib.Text
		open  bool
	)

	flush := func() {
		if !open {
			return
		}
		spans = append(spans, doctree.TextSpan{
			Text:     buf.String(),
			FontSize: first.FontSize,
			Page:     pageNum,
			Y:        height - (first.Y + first.FontSize),
		})
		buf.Reset()
		open = false
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if open && (formatChanged(prev, t) || lineChanged(prev, t)) {
			flush()
		}
		if !open {
			first = t
			open = true
		} else if needsSpace(prev, t) {
			buf.WriteByte(' ')
		}
		buf.WriteString(t.S)
		prev = t
	}
	flush()
	return spans
}

func formatChanged(prev, cur pdflib.Text) bool {
	return prev.Font != cur.Font || prev.FontSize != cur.FontSize
}

func lineChanged(prev, cur pdflib.Text) bool {
	return math.Abs(prev.Y-cur.Y) > baselineEpsilon
}

func needsSpace(prev, cur pdflib.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(cur.S, " ") {
		return false
	}
	gap := cur.X - (prev.X + prev.W)
	return gap > cur.FontSize*spaceGapRatio
}
