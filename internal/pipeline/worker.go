package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// ParserFactory returns the span collector for a file name.
type ParserFactory func(filename string) (parser.Parser, error)

// DefaultParsers resolves parsers with parser.ForFile.
func DefaultParsers(opts parser.Options) ParserFactory {
	return func(filename string) (parser.Parser, error) {
		return parser.ForFile(filename, opts)
	}
}

// Worker turns document bytes into an outline result.
type Worker struct {
	parsers   ParserFactory
	extractor *outline.Extractor
	log       *slog.Logger
	preflight bool
}

func NewWorker(parsers ParserFactory, extractor *outline.Extractor, log *slog.Logger, preflight bool) *Worker {
	if extractor == nil {
		extractor = outline.DefaultExtractor
	}
	return &Worker{
		parsers:   parsers,
		extractor: extractor,
		log:       log,
		preflight: preflight,
	}
}

// Process runs parse and extract for a queued job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	job.SetStatus(StatusParsing)
	doc, err := w.Collect(ctx, job.Filename, job.FileData())
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail(fmt.Errorf("parse: %w", err))
		return
	}

	job.SetStatus(StatusExtracting)
	res, err := w.Extract(doc)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.Fail(fmt.Errorf("extract: %w", err))
		return
	}

	job.Complete(res, doc.PageCount())
	log.Info("job complete", "title", res.Title, "headings", len(res.Outline), "pages", doc.PageCount())
}

// Collect preflights (when enabled) and parses one document held in memory.
func (w *Worker) Collect(ctx context.Context, filename string, data []byte) (doc *doctree.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("collector panic: %v", rec)
		}
	}()

	p, err := w.parsers(filename)
	if err != nil {
		return nil, err
	}
	if w.preflight {
		if _, err := parser.Probe(bytes.NewReader(data)); err != nil {
			return nil, err
		}
	}
	return p.Parse(ctx, bytes.NewReader(data), filename)
}

// Extract runs the heuristics, converting a panic into an error so one bad
// document cannot take down a batch.
func (w *Worker) Extract(doc *doctree.Document) (res doctree.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extract panic: %v", rec)
		}
	}()
	return w.extractor.Extract(doc).Normalized(), nil
}

// Outline collects and extracts in one call.
func (w *Worker) Outline(ctx context.Context, filename string, data []byte) (doctree.Result, int, error) {
	doc, err := w.Collect(ctx, filename, data)
	if err != nil {
		return doctree.Result{}, 0, err
	}
	res, err := w.Extract(doc)
	if err != nil {
		return doctree.Result{}, 0, err
	}
	return res, doc.PageCount(), nil
}
