package watch

import (
	"os"
	"slices"
	"sync"
	"time"

	"leafscan/internal/errors"
	"leafscan/internal/log"

	"github.com/fsnotify/fsnotify"
)

// FileEvent is a create or write of a regular file in a watched directory
type FileEvent struct {
	Path      string
	Info      os.FileInfo
	Timestamp time.Time
	Op        fsnotify.Op
}

// Watcher reports files created or rewritten in its directories
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan FileEvent

	mu      sync.RWMutex
	dirs    []string
	done    chan struct{}
	running bool
	closed  bool
}

// NewWatcher creates a directory watcher. Events are buffered up to
// bufferSize; further events are dropped until the consumer catches up.
func NewWatcher(bufferSize int) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Watcher{fs: fs, events: make(chan FileEvent, bufferSize)}, nil
}

// AddDirectory starts watching dir. Adding the same directory twice is a
// no-op.
func (w *Watcher) AddDirectory(dir string) error {
	if err := checkDir(dir); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.dirs, dir) {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return errors.NewFileError("failed to watch directory", dir, errors.FileAccessDenied, err)
	}
	w.dirs = append(w.dirs, dir)

	log.LogWithFields(log.F("directory", dir)).Info("watching inbox")
	return nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return errors.NewFileError("watch directory does not exist", dir, errors.FileNotFound, err)
	case err != nil:
		return errors.NewFileError("cannot access watch directory", dir, errors.FileAccessDenied, err)
	case !info.IsDir():
		return errors.NewFileError("not a directory", dir, errors.FileReadFailed, nil)
	}
	return nil
}

// Events delivers file events until the watcher is stopped
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Start runs the event loop in its own goroutine
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}
	if w.closed {
		return errors.New("watcher is stopped")
	}
	w.running = true
	w.done = make(chan struct{})
	go w.loop(w.done)
	return nil
}

func (w *Watcher) loop(done <-chan struct{}) {
	for {
		select {
		case raw, ok := <-w.fs.Events:
			if !ok {
				return
			}
			ev, ok := toFileEvent(raw)
			if !ok {
				continue
			}
			select {
			case w.events <- ev:
			case <-done:
				return
			default:
				log.LogWithFields(log.F("file", ev.Path)).Warn("inbox event buffer full, event dropped")
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.LogWithError(err).Error("fsnotify error")

		case <-done:
			return
		}
	}
}

// toFileEvent keeps creates and writes of regular files that still exist
func toFileEvent(raw fsnotify.Event) (FileEvent, bool) {
	if !raw.Has(fsnotify.Create) && !raw.Has(fsnotify.Write) {
		return FileEvent{}, false
	}
	info, err := os.Stat(raw.Name)
	if err != nil {
		if !os.IsNotExist(err) {
			log.LogWithError(err).With(log.F("file", raw.Name)).Warn("cannot stat inbox file")
		}
		return FileEvent{}, false
	}
	if !info.Mode().IsRegular() {
		return FileEvent{}, false
	}
	return FileEvent{Path: raw.Name, Info: info, Timestamp: time.Now(), Op: raw.Op}, true
}

// Stop halts the watcher and releases the fsnotify handle, also when it
// was never started. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.done)
		w.running = false
	}
	if w.closed {
		return
	}
	w.closed = true
	if err := w.fs.Close(); err != nil {
		log.LogWithError(err).Warn("closing fsnotify watcher")
	}
}

// IsRunning reports whether the event loop is active
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Directories returns the watched directories
func (w *Watcher) Directories() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.dirs)
}
