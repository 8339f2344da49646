package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Markdown writes the title as a level-one heading and the outline as a
// nested bullet list with page references.
type Markdown struct{}

func (Markdown) Ext() string         { return ".md" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }

func (Markdown) Render(w io.Writer, res doctree.Result) error {
	_, err := w.Write(markdownBytes(res))
	return err
}

func markdownBytes(res doctree.Result) []byte {
	var buf bytes.Buffer
	if res.Title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", escapeMarkdown(res.Title))
	}
	// A list item may nest at most one level below the previous item, or
	// Markdown would read the extra indentation as a code block.
	prev := -1
	for _, h := range res.Outline {
		depth := min(levelDepth(h.Level), prev+1)
		prev = depth
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&buf, "%s- %s (p. %d)\n", indent, escapeListText(h.Text), h.Page)
	}
	return buf.Bytes()
}

// levelDepth is the zero-based nesting depth of a heading level.
func levelDepth(l doctree.Level) int {
	for i, lv := range doctree.Levels {
		if lv == l {
			return i
		}
	}
	return 0
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `#`, `\#`, `<`, `\<`, `>`, `\>`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeListText escapes s for use as list item text. Besides inline markup,
// a leading "1." / "1)" or "+" / "-" would otherwise open a nested list.
func escapeListText(s string) string {
	s = escapeMarkdown(s)
	if s == "" {
		return s
	}
	switch s[0] {
	case '+', '-':
		return `\` + s
	}
	digits := 0
	for digits < len(s) && digits < 9 && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(s) && (s[digits] == '.' || s[digits] == ')') {
		return s[:digits] + `\` + s[digits:]
	}
	return s
}
