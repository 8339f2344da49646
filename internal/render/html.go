package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// HTML converts the Markdown rendering with goldmark and wraps the fragment
// in a standalone page.
type HTML struct{}

func (HTML) Ext() string         { return ".html" }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

func (HTML) Render(w io.Writer, res doctree.Result) error {
	var frag bytes.Buffer
	if err := goldmark.Convert(markdownBytes(res), &frag); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	body := element(atom.Body)
	nodes, err := html.ParseFragment(&frag, body)
	if err != nil {
		return fmt.Errorf("parse html fragment: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	title := element(atom.Title)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: pageTitle(res)})

	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}

	head := element(atom.Head)
	head.AppendChild(meta)
	head.AppendChild(title)

	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	return html.Render(w, doc)
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func pageTitle(res doctree.Result) string {
	if res.Title != "" {
		return res.Title
	}
	return "Outline"
}
