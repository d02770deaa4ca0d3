// Package recordfile loads feedback records from a JSON file and reloads them
// when the file changes on disk.
package recordfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// DefaultDebounce is the quiet period a burst of writes must settle for
// before the change handler runs.
const DefaultDebounce = 250 * time.Millisecond

// Load reads a JSON array of feedback records.
func Load(path string) ([]dashboard.FeedbackRecord, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("recordfile: read %s: %w", path, err)
	}
	var records []dashboard.FeedbackRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("recordfile: decode %s: %w", path, err)
	}
	return records, nil
}

// Source adapts the file at path to a dashboard.RecordSource. The file is
// read each time the source is called.
func Source(path string) dashboard.RecordSource {
	return func(*dashboard.StaticHierarchy, *dashboard.CategoryCatalog) ([]dashboard.FeedbackRecord, error) {
		return Load(path)
	}
}

// WatcherOptions tunes a Watcher.
type WatcherOptions struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher reports changes to a single record file. The parent directory is
// watched so editors that replace the file atomically are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewWatcher prepares a watcher for path.
func NewWatcher(path string, opts WatcherOptions) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("recordfile: path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("recordfile: resolve %s: %w", path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{path: abs, debounce: opts.Debounce, logger: opts.Logger}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run blocks until ctx is done, calling onChange once per settled burst of
// writes to the file. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("recordfile: watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("recordfile: create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("recordfile: watch %s: %w", filepath.Dir(w.path), err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "record file watcher error", "path", w.path, "error", err)
		case <-timer.C:
			w.logger.InfoContext(ctx, "record file changed", "path", w.path)
			onChange(ctx)
		}
	}
}
