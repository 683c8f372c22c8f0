package datasource

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher signals edits to the scenario file.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	target   string
	debounce time.Duration
	logger   *slog.Logger
	changes  chan struct{}
	done     chan struct{}
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger reports watcher errors to l.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher starts watching the scenario at path. The parent directory is
// watched so editors that save by renaming a temp file over it are seen.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		path:     path,
		target:   filepath.Base(path),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.loop()
	return w, nil
}

// Path returns the watched scenario file.
func (w *Watcher) Path() string { return w.path }

// Changes delivers at most one pending signal per settled burst of edits.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

// relevant reports whether ev touches the scenario file's contents.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != w.target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) loop() {
	var settle *time.Timer
	stop := func() {
		if settle != nil {
			settle.Stop()
		}
	}
	for {
		select {
		case <-w.done:
			stop()
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				stop()
				return
			}
			if !w.relevant(ev) {
				continue
			}
			stop()
			settle = time.AfterFunc(w.debounce, w.signal)
		case err, ok := <-w.fs.Errors:
			if !ok {
				stop()
				return
			}
			w.logger.Warn("scenario watch error", "path", w.path, "err", err)
		}
	}
}
