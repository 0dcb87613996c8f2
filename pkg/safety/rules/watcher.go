package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a Watcher waits for before reporting.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a pattern pack file or directory. Bursts of
// events (editors write, rename and chmod in quick succession) collapse into
// one callback once the path has been quiet for the debounce interval.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	// file is set when path names a single pack; events for its siblings
	// are ignored.
	file string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for path. A zero debounce uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger.With("component", "rules.watcher"),
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onChange
// after each debounced burst of pack changes. Errors from onChange are logged
// and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	if err := w.add(); err != nil {
		return err
	}

	w.logger.Info("watching pattern packs", "path", w.path, "debounce_ms", w.debounce.Milliseconds())

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.stopCh:
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("pattern pack event", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := onChange(); err != nil {
				w.logger.Error("pattern pack reload failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("pattern watcher error", "error", err)
		}
	}
}

// Stop ends a running Watch and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// add watches the path itself when it is a directory, or its parent when it
// is a single file, so atomic replace-by-rename is still observed.
func (w *Watcher) add() error {
	info, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", w.path, err)
	}
	dir := w.path
	if !info.IsDir() {
		dir = filepath.Dir(w.path)
		w.file = filepath.Clean(w.path)
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}
	return nil
}

func (w *Watcher) relevant(name string) bool {
	if w.file != "" {
		return filepath.Clean(name) == w.file
	}
	return isPackFile(filepath.Base(name))
}
