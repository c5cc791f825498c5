// Package watch re-runs a script file whenever it is saved.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"cellmapper/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a non-positive debounce is passed to New.
const DefaultDebounce = 300 * time.Millisecond

// Runs slower than this are logged as warnings.
const slowRun = 2 * time.Second

// Handler is called once per settled change of the watched file.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single file. The parent directory is watched so editors
// that save by rename-and-replace are still picked up.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	handler     Handler
	pending     time.Time
	debounceDur time.Duration
	tick        time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Created       int
	Modified      int
	Removed       int
	Runs          int
	Failures      int
	Errors        int
	LastEventTime time.Time
	LastEventType string
	LastRunErr    error
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, debounce time.Duration, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fw,
		path:        abs,
		dir:         filepath.Dir(abs),
		handler:     handler,
		debounceDur: debounce,
		tick:        tickFor(debounce),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

func tickFor(debounce time.Duration) time.Duration {
	t := debounce / 2
	switch {
	case t < 5*time.Millisecond:
		return 5 * time.Millisecond
	case t > 100*time.Millisecond:
		return 100 * time.Millisecond
	}
	return t
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. It is non-blocking and a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if w.closed {
		w.mu.Unlock()
		return errors.New("watch: watcher already stopped")
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.mu.Unlock()

	logging.Watch("watching %s (debounce %s)", w.path, w.debounceDur)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. A watcher
// cannot be restarted once stopped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.closed = true
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		logging.WatchError("error closing watcher: %v", err)
	}
	logging.Watch("stopped watching %s", w.path)
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	select {
	case <-ctx.Done():
	case <-w.doneCh:
	}
	w.Stop()
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Has(fsnotify.Create):
		eventType = "create"
	case event.Has(fsnotify.Write):
		eventType = "modify"
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eventType = "remove"
	default:
		return
	}

	logging.WatchDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.Created++
	case "modify":
		w.stats.Modified++
	case "remove":
		// Nothing to run until the file comes back.
		w.stats.Removed++
		w.pending = time.Time{}
		return
	}
	w.pending = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	_ = w.Trigger(ctx)
}

// Trigger runs the handler immediately. Handler failures are recorded and
// logged but never stop the watcher.
func (w *Watcher) Trigger(ctx context.Context) error {
	timer := logging.StartTimer(logging.CategoryWatch, "run of "+filepath.Base(w.path))
	err := w.handler(ctx, w.path)
	timer.StopWithThreshold(slowRun)

	w.mu.Lock()
	w.stats.Runs++
	w.stats.LastRunErr = err
	if err != nil {
		w.stats.Failures++
	}
	w.mu.Unlock()

	if err != nil {
		logging.WatchError("run of %s failed: %v", filepath.Base(w.path), err)
	}
	return err
}

// GetStats returns a snapshot of the watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
