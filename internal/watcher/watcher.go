// Package watcher re-triggers work when input files change.
//
// fsnotify cannot reliably watch a file that editors replace by rename, so the
// parent directories are watched and events are filtered by path. Bursts of
// events for the same file are collapsed into one callback.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period after the last event before a callback fires.
const DefaultDebounce = 150 * time.Millisecond

// Watcher calls OnChange with the path of a watched file after it was written
// or recreated.
type Watcher struct {
	files    map[string]bool
	dirs     map[string]bool
	onChange func(path string)
	debounce time.Duration
	logger   zerolog.Logger

	fsw *fsnotify.Watcher

	// calls serializes callbacks per path so reports come out in change order.
	calls map[string]*sync.Mutex

	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopped  bool
	inflight sync.WaitGroup
}

// New creates a watcher for paths. Nothing is watched until Run is called.
func New(paths []string, onChange func(path string), logger zerolog.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger,
		fsw:      fsw,
		calls:    make(map[string]*sync.Mutex),
		timers:   make(map[string]*time.Timer),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = true
		w.dirs[filepath.Dir(abs)] = true
		w.calls[abs] = &sync.Mutex{}
	}
	return w, nil
}

// SetDebounce changes the quiet period. It must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches until ctx is done. Pending callbacks are dropped, and running ones
// finish, before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.stopTimers()

	for dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug().Str("dir", dir).Msg("watching")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() { w.fire(path, t) })
	w.timers[path] = t
}

// fire runs the callback for t unless t was superseded or the watcher stopped.
func (w *Watcher) fire(path string, t *time.Timer) {
	w.mu.Lock()
	if w.stopped || w.timers[path] != t {
		w.mu.Unlock()
		return
	}
	delete(w.timers, path)
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	calls := w.calls[path]
	calls.Lock()
	defer calls.Unlock()

	w.logger.Debug().Str("path", path).Msg("changed")
	w.onChange(path)
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.inflight.Wait()
}
