// Package render encodes outline results. JSON is the canonical batch
// output; Markdown, HTML and DOCX are export formats.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Renderer writes a result in one output format.
type Renderer interface {
	// Ext is the file extension, including the dot.
	Ext() string
	// ContentType is the MIME type served by the HTTP API.
	ContentType() string
	Render(w io.Writer, res doctree.Result) error
}

// Formats lists the accepted format names.
var Formats = []string{"json", "md", "html", "docx"}

// ForFormat returns the renderer for a format name. "" means JSON.
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON{}, nil
	case "md", "markdown":
		return Markdown{}, nil
	case "html", "htm":
		return HTML{}, nil
	case "docx":
		return DOCX{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}
