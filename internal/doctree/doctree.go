package doctree

// TextSpan is a run of text with a uniform font size, as reported by a collector.
type TextSpan struct {
	Text     string  `json:"text"`      // Span text as drawn
	FontSize float64 `json:"font_size"` // Font size in points
	Page     int     `json:"page"`      // 1-based page number
	Y        float64 `json:"y"`         // Top edge, increasing downward from the page top
}

// Level is a heading level. The zero value means "not a heading".
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Levels lists heading levels from the largest font cluster down.
var Levels = []Level{H1, H2, H3}

// Heading is one outline entry.
type Heading struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is the ordered list of headings in reading order.
type Outline []Heading

// Result is the per-document output.
type Result struct {
	Title   string  `json:"title"`
	Outline Outline `json:"outline"`
}

// Normalized returns a copy with a non-nil outline so it encodes as [].
func (r Result) Normalized() Result {
	if r.Outline == nil {
		r.Outline = Outline{}
	}
	return r
}

// Document is what a collector produces for one input file.
type Document struct {
	Name          string       // Input file name, used for logs and output naming
	MetadataTitle string       // Info dictionary title, empty if absent
	Pages         [][]TextSpan // Pages[i] holds the spans of page i+1 in content order
}

// PageCount returns the number of pages seen by the collector.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// FirstPage returns the spans of page 1, or nil for an empty document.
func (d *Document) FirstPage() []TextSpan {
	if len(d.Pages) == 0 {
		return nil
	}
	return d.Pages[0]
}

// Spans flattens all pages in page order.
func (d *Document) Spans() []TextSpan {
	n := 0
	for _, p := range d.Pages {
		n += len(p)
	}
	out := make([]TextSpan, 0, n)
	for _, p := range d.Pages {
		out = append(out, p...)
	}
	return out
}
