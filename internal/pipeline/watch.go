package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/docoutline/internal/parser"
)

// DefaultDebounce is how long a PDF must be quiet before it is processed.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reprocesses PDFs as they appear or change in the input directory
// and removes outputs for PDFs that disappear.
type Watcher struct {
	runner   *Runner
	log      *slog.Logger
	Debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRun
	paths   map[string]*sync.Mutex // serializes processing and removal per input
	wg      sync.WaitGroup
}

type pendingRun struct {
	timer *time.Timer
}

func NewWatcher(runner *Runner, log *slog.Logger) *Watcher {
	return &Watcher{
		runner:   runner,
		log:      log,
		Debounce: DefaultDebounce,
		pending:  make(map[string]*pendingRun),
		paths:    make(map[string]*sync.Mutex),
	}
}

// Watch blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := w.runner.Config().InputDir
	if err := os.MkdirAll(w.runner.Config().OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("watching", "input_dir", dir, "debounce_ms", w.Debounce.Milliseconds())

	defer w.drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("watch events dropped", "error", err)
				continue
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !parser.IsSupportedExtension(ev.Name) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.schedule(ctx, ev.Name)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancelPending(ev.Name)
		lock := w.pathLock(ev.Name)
		lock.Lock()
		defer lock.Unlock()
		out := w.runner.OutputPath(ev.Name)
		if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.log.Error("remove output failed", "output", out, "error", err)
			return
		}
		w.log.Info("removed", "input", ev.Name, "output", out)
	}
}

// schedule (re)arms the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(w.Debounce)
		return
	}

	p := &pendingRun{}
	w.wg.Add(1)
	p.timer = time.AfterFunc(w.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == p {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		lock := w.pathLock(path)
		lock.Lock()
		defer lock.Unlock()
		if _, err := os.Stat(path); err != nil {
			return
		}
		w.runner.processOne(ctx, filepath.Clean(path))
	})
	w.pending[path] = p
}

// pathLock returns the mutex guarding path. A removal that arrives while the
// input is being processed waits for the output to be written, then deletes it.
func (w *Watcher) pathLock(path string) *sync.Mutex {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.paths[path]
	if !ok {
		l = &sync.Mutex{}
		w.paths[path] = l
	}
	return l
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		delete(w.pending, path)
		w.wg.Done()
	}
}

// drain stops timers that have not fired and waits for running ones.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, p := range w.pending {
		if p.timer.Stop() {
			delete(w.pending, path)
			w.wg.Done()
		}
	}
	w.mu.Unlock()
	w.wg.Wait()
}
