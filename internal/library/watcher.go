package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/scarepick/internal/log"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher holds the current snapshot and replaces it when the data files
// change. A reload that fails keeps the current snapshot.
type Watcher struct {
	source   Source
	files    map[string]struct{}
	debounce time.Duration
	logger   *log.Logger

	current  atomic.Pointer[Library]
	mu       sync.Mutex
	onChange []func(*Library)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger used for reload events.
func WithLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a watcher seeded with initial. The snapshot's source
// must name at least one file on disk.
func NewWatcher(initial *Library, opts ...WatcherOption) (*Watcher, error) {
	if initial == nil {
		return nil, errors.New("library watcher needs an initial snapshot")
	}

	w := &Watcher{
		source:   initial.Source,
		files:    make(map[string]struct{}),
		debounce: DefaultDebounce,
		logger:   log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, f := range initial.Source.Files() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
	}
	if len(w.files) == 0 {
		return nil, errors.New("built-in data cannot be watched")
	}

	w.current.Store(initial)
	return w, nil
}

// Current returns the latest snapshot.
func (w *Watcher) Current() *Library {
	return w.current.Load()
}

// OnChange registers fn to run after each successful reload. Callbacks run
// on the watcher goroutine in registration order.
func (w *Watcher) OnChange(fn func(*Library)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Run watches the data files until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	// Directories rather than files, so editors that save by rename are seen.
	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.logger.Info("watching data files", "files", w.source.Files(), "debounce", w.debounce.String())

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("data watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)

		case <-fire:
			fire = nil
			w.Reload(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

// Reload loads the source again and publishes the result if the data
// changed. It reports whether a new snapshot was published.
func (w *Watcher) Reload(ctx context.Context) bool {
	next, err := Load(ctx, w.source)
	if err != nil {
		w.logger.WithError(err).Error("reload failed, keeping current data")
		return false
	}

	prev := w.current.Load()
	if prev != nil && prev.Fingerprint == next.Fingerprint {
		w.logger.Debug("data unchanged", "fingerprint", next.Fingerprint)
		return false
	}
	if err := next.Check(); err != nil {
		w.logger.WithError(err).Warn("reloaded data has problems")
	}

	w.current.Store(next)
	w.logger.Info("data reloaded",
		"questions", next.Graph.Len(),
		"movies", next.Store.Len(),
		"fingerprint", next.Fingerprint,
	)

	w.mu.Lock()
	handlers := append([]func(*Library){}, w.onChange...)
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(next)
	}
	return true
}
