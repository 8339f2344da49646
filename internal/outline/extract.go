// Package outline derives a document title and a three-level heading outline
// from positioned text spans using font-size heuristics only.
package outline

import (
	"github.com/dgallion1/docoutline/internal/doctree"
)

// Options tunes the heuristics. Zero fields fall back to the defaults, which
// match BuildClusters and ResolveTitle.
type Options struct {
	ClusterTolerance float64 // max size gap to join a cluster or match a level
	TitleTolerance   float64 // max size gap from the first-page maximum for title candidates
	MaxLevels        int     // heading levels to emit, 1..3
}

// Extractor runs the title and outline heuristics over collected documents.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	opts Options
}

// DefaultExtractor uses the default options.
var DefaultExtractor = NewExtractor(Options{})

// NewExtractor fills unset options with defaults and clamps MaxLevels to 1..3.
func NewExtractor(opts Options) *Extractor {
	if opts.ClusterTolerance <= 0 {
		opts.ClusterTolerance = DefaultClusterTolerance
	}
	if opts.TitleTolerance <= 0 {
		opts.TitleTolerance = DefaultTitleTolerance
	}
	if opts.MaxLevels <= 0 || opts.MaxLevels > len(doctree.Levels) {
		opts.MaxLevels = len(doctree.Levels)
	}
	return &Extractor{opts: opts}
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract builds the result for doc with the default options.
func Extract(doc *doctree.Document) doctree.Result {
	return DefaultExtractor.Extract(doc)
}

// Extract resolves the title from metadata or the first page, clusters the
// font sizes of all meaningful spans, and builds the outline.
func (e *Extractor) Extract(doc *doctree.Document) doctree.Result {
	title := resolveTitle(doc.MetadataTitle, doc.FirstPage(), e.opts.TitleTolerance)

	spans := doc.Spans()
	var sizes []float64
	for _, s := range spans {
		if IsMeaningful(s.Text) {
			sizes = append(sizes, s.FontSize)
		}
	}
	if len(sizes) == 0 {
		return doctree.Result{Title: title, Outline: doctree.Outline{}}
	}

	clusters := e.Clusters(sizes)
	return doctree.Result{
		Title:   title,
		Outline: BuildOutline(spans, clusters.Level),
	}
}

// Clusters groups sizes with the extractor's tolerance and level limit.
func (e *Extractor) Clusters(sizes []float64) Clusters {
	return buildClusters(sizes, e.opts.ClusterTolerance, e.opts.MaxLevels)
}
