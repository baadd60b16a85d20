// Package watch reports changes to the local snapshot file.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/glabrego/threadbox/internal/debug"
)

const (
	DefaultDebounce     = 200 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnError sets the callback for watch errors. Errors never stop the
// watcher.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify and polls the file's mtime and size.
func WithForcePoll() Option {
	return func(w *Watcher) { w.forcePoll = true }
}

// Watcher coalesces bursts of writes into one signal on Changed. Editors
// that save by rename are handled by watching the parent directory.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onError      func(error)
	forcePoll    bool

	mu       sync.Mutex
	started  bool
	polling  bool
	cancel   context.CancelFunc
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	lastMod  time.Time
	lastSize int64
	changeCh chan struct{}
}

func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Watcher) Path() string { return w.path }

// Changed receives once per debounced burst of changes.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if info, err := os.Stat(w.path); err == nil {
		w.lastMod, w.lastSize = info.ModTime(), info.Size()
	}

	w.polling = true
	if !w.forcePoll {
		if fsw, err := fsnotify.NewWatcher(); err == nil {
			if err := fsw.Add(filepath.Dir(w.path)); err == nil {
				w.fsw = fsw
				w.polling = false
				go w.watchEvents(ctx, fsw)
			} else {
				_ = fsw.Close()
				debug.Log("watch %s: falling back to polling: %v", w.path, err)
			}
		}
	}
	if w.polling {
		go w.watchPolling(ctx)
	}
	w.started = true
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.started = false
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.trigger()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				if os.IsNotExist(err) {
					w.mu.Lock()
					had := !w.lastMod.IsZero()
					w.lastMod, w.lastSize = time.Time{}, 0
					w.mu.Unlock()
					if had {
						w.onError(ErrFileRemoved)
					}
					continue
				}
				w.onError(err)
				continue
			}
			w.mu.Lock()
			changed := !info.ModTime().Equal(w.lastMod) || info.Size() != w.lastSize
			w.lastMod, w.lastSize = info.ModTime(), info.Size()
			w.mu.Unlock()
			if changed {
				w.trigger()
			}
		}
	}
}

// trigger restarts the debounce timer.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.notify)
}

func (w *Watcher) notify() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		return
	}
	debug.Log("snapshot file changed: %s", w.path)
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
