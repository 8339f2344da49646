package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/render"
	"github.com/dgallion1/docoutline/internal/schema"
)

// RunConfig locates a batch and controls how it is processed.
type RunConfig struct {
	InputDir  string
	OutputDir string
	Workers   int
	Clean     bool // remove existing *.json outputs before the run
	Preflight bool // check the PDF structure before collecting spans
	Validate  bool // validate each result against the output schema before writing
}

// Runner processes every PDF in an input directory into one JSON file each.
type Runner struct {
	cfg    RunConfig
	worker *Worker
	log    *slog.Logger
}

func NewRunner(cfg RunConfig, parsers ParserFactory, extractor *outline.Extractor, log *slog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{
		cfg:    cfg,
		worker: NewWorker(parsers, extractor, log, cfg.Preflight),
		log:    log,
	}
}

// Config returns the effective run configuration.
func (r *Runner) Config() RunConfig {
	return r.cfg
}

// DocumentReport is the outcome for one input file.
type DocumentReport struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Title    string `json:"title"`
	Headings int    `json:"headings"`
	Err      string `json:"error,omitempty"`
}

// Report summarizes one batch run.
type Report struct {
	RunID     string           `json:"run_id"`
	Started   time.Time        `json:"started"`
	Finished  time.Time        `json:"finished"`
	Documents []DocumentReport `json:"documents"`
}

// Failed counts documents that produced no output.
func (rep *Report) Failed() int {
	n := 0
	for _, d := range rep.Documents {
		if d.Err != "" {
			n++
		}
	}
	return n
}

// Clean creates the output directory and removes JSON files left by a
// previous run. Other files are left alone.
func (r *Runner) Clean() error {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	entries, err := os.ReadDir(r.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(r.cfg.OutputDir, e.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// Inputs lists the PDFs in the input directory, sorted by name.
func (r *Runner) Inputs() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(r.cfg.InputDir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes the whole batch. Per-document failures are recorded in the
// report; the returned error is reserved for failures of the batch itself.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.New().String(), Started: time.Now()}
	log := r.log.With("run_id", rep.RunID)

	if r.cfg.Clean {
		if err := r.Clean(); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	inputs, err := r.Inputs()
	if err != nil {
		return nil, err
	}
	log.Info("batch started", "input_dir", r.cfg.InputDir, "output_dir", r.cfg.OutputDir, "documents", len(inputs), "workers", r.cfg.Workers)

	rep.Documents = make([]DocumentReport, len(inputs))
	sem := make(chan struct{}, r.cfg.Workers)
	var wg sync.WaitGroup

	// Inputs differing only in extension case share an output file; the
	// first in sorted order owns it.
	owners := make(map[string]string, len(inputs))

dispatch:
	for i, path := range inputs {
		out := r.OutputPath(path)
		if first, taken := owners[out]; taken {
			log.Warn("duplicate output skipped", "input", path, "output", out, "owner", first)
			rep.Documents[i] = DocumentReport{
				Input: path,
				Err:   fmt.Sprintf("output %s already produced by %s", out, first),
			}
			continue
		}
		owners[out] = path

		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			rep.Documents[i] = r.processOne(ctx, path)
		}()
	}
	wg.Wait()
	rep.Finished = time.Now()

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("batch interrupted: %w", err)
	}
	log.Info("batch finished", "documents", len(inputs), "failed", rep.Failed(), "duration_ms", rep.Finished.Sub(rep.Started).Milliseconds())
	return rep, nil
}

// ProcessFile collects and extracts one document without writing output.
func (r *Runner) ProcessFile(ctx context.Context, path string) (doctree.Result, error) {
	doc, err := r.Collect(ctx, path)
	if err != nil {
		return doctree.Result{}, err
	}
	return r.worker.Extract(doc)
}

// Collect reads and parses one document.
func (r *Runner) Collect(ctx context.Context, path string) (*doctree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.worker.Collect(ctx, filepath.Base(path), data)
}

// OutputPath is where the result for input path is written.
func (r *Runner) OutputPath(input string) string {
	return filepath.Join(r.cfg.OutputDir, parser.Stem(input)+".json")
}

func (r *Runner) processOne(ctx context.Context, path string) DocumentReport {
	rep := DocumentReport{Input: path}
	log := r.log.With("input", path)

	res, err := r.ProcessFile(ctx, path)
	if err != nil {
		log.Error("document failed", "error", err)
		rep.Err = err.Error()
		return rep
	}
	rep.Title = res.Title
	rep.Headings = len(res.Outline)

	out := r.OutputPath(path)
	if err := r.write(out, res); err != nil {
		log.Error("write failed", "output", out, "error", err)
		rep.Err = err.Error()
		return rep
	}
	rep.Output = out
	log.Info("processed", "output", out, "title", res.Title, "headings", len(res.Outline))
	return rep
}

// write encodes res and replaces path atomically.
func (r *Runner) write(path string, res doctree.Result) error {
	data, err := render.MarshalJSON(res)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if r.cfg.Validate {
		if err := schema.Validate(data); err != nil {
			return fmt.Errorf("validate %s: %w", path, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".docoutline-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
