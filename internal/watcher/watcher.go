// Package watcher implements recursive filesystem watching for dev mode.
// Change bursts are debounced into batches so one save triggering several
// filesystem events causes one re-extraction.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove"
}

// DefaultDebounce is the batching window applied when the caller passes a
// non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches directory trees for changes to files with the configured
// extensions.
type Watcher struct {
	dirs       []string
	extensions []string // e.g. [".ts", ".tsx"]
	debounce   time.Duration
	onChange   func(events []Event)

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a file watcher over the given directory trees.
func New(dirs []string, extensions []string, debounce time.Duration, onChange func(events []Event)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dirs:       dirs,
		extensions: extensions,
		debounce:   debounce,
		onChange:   onChange,
		stopCh:     make(chan struct{}),
	}
}

// Watch blocks delivering debounced change batches to onChange until Stop
// is called. Directories created while watching are picked up as they
// appear.
func (w *Watcher) Watch() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := addRecursive(fw, dir); err != nil {
			return err
		}
	}

	for {
		select {
		case <-w.stopCh:
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// Register new subtrees before their contents settle.
					_ = addRecursive(fw, ev.Name)
					continue
				}
			}
			if e, ok := w.translate(ev); ok {
				w.enqueue(e)
			}
		case _, ok := <-fw.Errors:
			// Transient watch errors must not kill dev mode.
			if !ok {
				return nil
			}
		}
	}
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// translate filters and maps one fsnotify event onto the watcher's event
// vocabulary. Chmod-only events and unwatched extensions report false.
func (w *Watcher) translate(ev fsnotify.Event) (Event, bool) {
	if !w.accepts(ev.Name) {
		return Event{}, false
	}
	switch {
	case ev.Op&fsnotify.Create != 0:
		return Event{Path: ev.Name, Op: "create"}, true
	case ev.Op&fsnotify.Write != 0:
		return Event{Path: ev.Name, Op: "write"}, true
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return Event{Path: ev.Name, Op: "remove"}, true
	}
	return Event{}, false
}

func (w *Watcher) accepts(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// enqueue buffers an event and (re)arms the debounce timer; the batch
// flushes once the tree has been quiet for the debounce window.
func (w *Watcher) enqueue(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, e)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(pending) > 0 && w.onChange != nil {
		w.onChange(pending)
	}
}

// addRecursive registers dir and every subdirectory with the fsnotify
// watcher. fsnotify watches single directories only, so the tree is walked
// up front.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
