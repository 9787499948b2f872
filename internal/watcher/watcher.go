// Package watcher reports filesystem changes for the files matched by a glob
// pattern. It watches the static base directory of the pattern recursively,
// follows directories created later, and filters every event through the
// pattern and an optional exclude pattern.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/tgairbot/cli/internal/logging"
)

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter determines if a file should be reported
type FileFilter func(path string) bool

// ChangeHandler handles a single file change event. Handlers run on the
// watcher's own goroutine, one event at a time.
type ChangeHandler func(event ChangeEvent)

// GlobFilter accepts paths matched by pattern.
func GlobFilter(pattern string) FileFilter {
	return func(path string) bool {
		ok, err := doublestar.PathMatch(pattern, path)
		return err == nil && ok
	}
}

// ExcludeFilter rejects paths matched by pattern. An empty pattern accepts
// everything.
func ExcludeFilter(pattern string) FileFilter {
	if pattern == "" {
		return func(string) bool { return true }
	}
	match := GlobFilter(pattern)
	return func(path string) bool {
		return !match(path)
	}
}

// GlobWatcher watches the files matched by one glob pattern.
type GlobWatcher struct {
	watcher *fsnotify.Watcher
	base    string
	filters []FileFilter
	handler ChangeHandler
	logger  logging.Logger

	mutex     sync.Mutex
	started   bool
	closed    bool
	loopDone  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewGlobWatcher creates a watcher for the absolute glob pattern. Paths
// matching exclude are never reported.
func NewGlobWatcher(pattern, exclude string, handler ChangeHandler, logger logging.Logger) (*GlobWatcher, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, errors.New("invalid glob pattern: " + pattern)
	}
	if exclude != "" && !doublestar.ValidatePathPattern(exclude) {
		return nil, errors.New("invalid exclude pattern: " + exclude)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))

	return &GlobWatcher{
		watcher:  fsw,
		base:     filepath.Clean(filepath.FromSlash(base)),
		filters:  []FileFilter{GlobFilter(pattern), ExcludeFilter(exclude)},
		handler:  handler,
		logger:   logger,
		loopDone: make(chan struct{}),
	}, nil
}

// Start registers the watches, reports every file that already matches as
// created, then keeps reporting changes until Close.
func (w *GlobWatcher) Start(ctx context.Context) error {
	root := nearestExisting(w.base)
	if err := w.addTree(root, true); err != nil {
		return err
	}

	w.mutex.Lock()
	w.started = true
	w.mutex.Unlock()

	go w.watchLoop(ctx)

	return nil
}

// Close stops the watcher. Once it returns, the handler is not invoked
// again. It must not be called from inside the handler.
func (w *GlobWatcher) Close() error {
	w.closeOnce.Do(func() {
		w.mutex.Lock()
		w.closed = true
		started := w.started
		w.mutex.Unlock()

		w.closeErr = w.watcher.Close()
		if started {
			<-w.loopDone
		}
	})
	return w.closeErr
}

func (w *GlobWatcher) watchLoop(ctx context.Context) {
	defer close(w.loopDone)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "File watcher error", "base", w.base)
		}
	}
}

func (w *GlobWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if w.relevant(path) {
				if err := w.addTree(path, true); err != nil {
					w.logger.Warn(context.Background(), err, "Cannot watch directory", "path", path)
				}
			}
			return
		}
		w.emit(EventTypeCreated, path, info)

	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		w.emit(EventTypeModified, path, info)

	case event.Op.Has(fsnotify.Remove):
		w.emit(EventTypeDeleted, path, nil)

	case event.Op.Has(fsnotify.Rename):
		w.emit(EventTypeRenamed, path, nil)
	}
}

// addTree watches dir and every relevant directory below it. When report
// is set, files already present are emitted as created.
func (w *GlobWatcher) addTree(dir string, report bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}

		if d.IsDir() {
			if !w.relevant(path) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}

		if report && d.Type().IsRegular() {
			info, err := d.Info()
			if err == nil {
				w.emit(EventTypeCreated, path, info)
			}
		}
		return nil
	})
}

// relevant reports whether dir lies on the way to, or below, the base
// directory of the pattern.
func (w *GlobWatcher) relevant(dir string) bool {
	return within(w.base, dir) || within(dir, w.base)
}

func (w *GlobWatcher) emit(typ EventType, path string, info os.FileInfo) {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return
	}
	filters := w.filters
	w.mutex.Unlock()

	for _, filter := range filters {
		if !filter(path) {
			return
		}
	}

	if info != nil && !info.Mode().IsRegular() {
		return
	}

	event := ChangeEvent{Type: typ, Path: path}
	if info != nil {
		event.ModTime = info.ModTime()
		event.Size = info.Size()
	}

	w.handler(event)
}

// within reports whether path equals root or is below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func nearestExisting(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
