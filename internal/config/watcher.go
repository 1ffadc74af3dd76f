package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce collapses editor write bursts into one reload.
const defaultDebounce = 1500 * time.Millisecond

// Watcher reloads a file through a typed loader whenever it changes on
// disk. The loader runs fresh on every reload, so handlers never see
// stale data.
type Watcher[T any] struct {
	path     string
	loader   func(string) (T, error)
	logger   *slog.Logger
	debounce time.Duration
	onError  func(error)

	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
	timer    *time.Timer

	fs   *fsnotify.Watcher
	done chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption[T any] func(*Watcher[T])

// WithDebounce overrides the default 1500ms debounce.
func WithDebounce[T any](d time.Duration) WatcherOption[T] {
	return func(w *Watcher[T]) { w.debounce = d }
}

// WithErrorHandler adds a callback for loader failures, which are
// otherwise only logged.
func WithErrorHandler[T any](fn func(error)) WatcherOption[T] {
	return func(w *Watcher[T]) { w.onError = fn }
}

// NewConfigWatcher creates a watcher for path. The loader turns the
// file into a T; handlers registered with OnReload receive each
// successfully loaded value.
func NewConfigWatcher[T any](path string, loader func(string) (T, error), logger *slog.Logger, opts ...WatcherOption[T]) *Watcher[T] {
	w := &Watcher[T]{
		path:     path,
		loader:   loader,
		logger:   logger,
		debounce: defaultDebounce,
		handlers: make(map[int]func(T)),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnReload registers a handler. The returned function unregisters it.
func (w *Watcher[T]) OnReload(handler func(T)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.handlers[id] = handler
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.handlers, id)
		w.mu.Unlock()
	}
}

// Start begins watching. The parent directory is watched rather than
// the file itself, so editors that replace the file by renaming a
// temporary over it are still observed.
func (w *Watcher[T]) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return err
	}
	w.fs = fs

	w.logger.Info("watching file", "path", w.path, "debounce", w.debounce)
	go w.loop()
	return nil
}

// Stop ends watching and releases the inotify handle.
func (w *Watcher[T]) Stop() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if w.fs != nil {
		return w.fs.Close()
	}
	return nil
}

func (w *Watcher[T]) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("file changed", "path", w.path, "op", ev.Op.String())
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "path", w.path, "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher[T]) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.reload)
		return
	}
	w.timer.Reset(w.debounce)
}

// reload runs the loader and fans the result out to the handlers.
func (w *Watcher[T]) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	value, err := w.loader(w.path)
	if err != nil {
		w.logger.Warn("reload failed", "path", w.path, "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	handlers := make([]func(T), 0, len(w.handlers))
	for _, h := range w.handlers {
		handlers = append(handlers, h)
	}
	w.mu.Unlock()

	for _, h := range handlers {
		h(value)
	}
}
