package render

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DOCX writes a Word document with the title and one styled paragraph per
// heading (Heading1..Heading3).
type DOCX struct{}

func (DOCX) Ext() string { return ".docx" }
func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// docxHeadingSizes are run sizes in half-points for H1..H3.
var docxHeadingSizes = map[doctree.Level]string{
	doctree.H1: "32",
	doctree.H2: "28",
	doctree.H3: "24",
}

func (DOCX) Render(w io.Writer, res doctree.Result) error {
	doc := docx.New().WithDefaultTheme()

	if res.Title != "" {
		p := doc.AddParagraph()
		p.Properties = &docx.ParagraphProperties{Style: &docx.Style{Val: "Title"}}
		p.AddText(res.Title).Size("40").Bold()
	}

	for _, h := range res.Outline {
		p := doc.AddParagraph()
		p.Properties = &docx.ParagraphProperties{
			Style: &docx.Style{Val: fmt.Sprintf("Heading%d", levelDepth(h.Level)+1)},
		}
		p.AddText(h.Text).Size(docxHeadingSizes[h.Level]).Bold()
		p.AddText(fmt.Sprintf(" (p. %d)", h.Page)).Size(docxHeadingSizes[h.Level])
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
