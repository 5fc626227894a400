package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/carepath/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Change names what was modified on disk.
type Change struct {
	// PathwayID is the document id, empty when Catalog is set.
	PathwayID string
	// Catalog reports that catalog.yaml changed.
	Catalog bool
}

// Watcher reports pathway documents that change in a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long to wait for events to settle.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher for dir. Nothing is watched until Run.
func NewWatcher(dir string, opts ...WatchOption) *Watcher {
	w := &Watcher{dir: dir, debounce: DefaultDebounce, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done, calling onChange once per settled change.
// Calls to onChange are serialized.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching pathway directory", "dir", w.dir)

	var (
		mu      sync.Mutex
		pending = map[Change]*time.Timer{}
		wg      sync.WaitGroup
		fire    sync.Mutex
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			change, ok := classify(event.Name)
			if !ok {
				continue
			}
			w.logger.Debug("Pathway file changed", "file", event.Name, "op", event.Op.String())

			mu.Lock()
			if t, ok := pending[change]; ok && t.Stop() {
				wg.Done()
			}
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				mu.Lock()
				if pending[change] == timer {
					delete(pending, change)
				}
				mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				fire.Lock()
				defer fire.Unlock()
				onChange(change)
			})
			pending[change] = timer
			mu.Unlock()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

// classify maps a file name onto the pathway it stores.
func classify(name string) (Change, bool) {
	base := filepath.Base(name)
	if base == CatalogFile {
		return Change{Catalog: true}, true
	}
	for _, e := range extensions {
		if id, ok := strings.CutSuffix(base, e.ext); ok && id != "" && !strings.HasPrefix(id, ".") {
			return Change{PathwayID: id}, true
		}
	}
	return Change{}, false
}
