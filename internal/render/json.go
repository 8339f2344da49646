package render

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// JSON writes the canonical pretty-printed result.
type JSON struct{}

func (JSON) Ext() string         { return ".json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(w io.Writer, res doctree.Result) error {
	data, err := MarshalJSON(res)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MarshalJSON encodes res with two-space indentation, "title" before
// "outline", an empty outline as [], and a trailing newline.
func MarshalJSON(res doctree.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res.Normalized()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
