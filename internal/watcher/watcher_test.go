package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherAccepts(t *testing.T) {
	w := New(nil, []string{".ts", ".tsx"}, 0, nil)

	if !w.accepts("/src/app.ts") {
		t.Error("expected .ts to be accepted")
	}
	if !w.accepts("/src/view.tsx") {
		t.Error("expected .tsx to be accepted")
	}
	if w.accepts("/src/style.css") {
		t.Error("expected .css to be rejected")
	}
	if w.accepts("/src/README") {
		t.Error("expected extension-less path to be rejected")
	}
}

func TestWatcherTranslate(t *testing.T) {
	w := New(nil, []string{".ts"}, 0, nil)

	cases := []struct {
		op   fsnotify.Op
		want string
		ok   bool
	}{
		{fsnotify.Create, "create", true},
		{fsnotify.Write, "write", true},
		{fsnotify.Remove, "remove", true},
		{fsnotify.Rename, "remove", true},
		{fsnotify.Chmod, "", false},
	}
	for _, tc := range cases {
		e, ok := w.translate(fsnotify.Event{Name: "/src/app.ts", Op: tc.op})
		if ok != tc.ok {
			t.Errorf("%v: expected ok=%v, got %v", tc.op, tc.ok, ok)
			continue
		}
		if ok && e.Op != tc.want {
			t.Errorf("%v: expected op %q, got %q", tc.op, tc.want, e.Op)
		}
	}

	if _, ok := w.translate(fsnotify.Event{Name: "/src/style.css", Op: fsnotify.Write}); ok {
		t.Error("unwatched extension should not translate")
	}
}

func TestWatcherDebounceBatches(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	w := New(nil, []string{".ts"}, 50*time.Millisecond, func(events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
	})

	w.enqueue(Event{Path: "/a.ts", Op: "write"})
	w.enqueue(Event{Path: "/b.ts", Op: "create"})

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if len(batches[0]) != 2 {
		t.Errorf("expected 2 events in batch, got %v", batches[0])
	}
}

func TestWatcherDebounceRearms(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	w := New(nil, []string{".ts"}, 50*time.Millisecond, func(events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
	})

	w.enqueue(Event{Path: "/a.ts", Op: "write"})
	time.Sleep(300 * time.Millisecond)
	w.enqueue(Event{Path: "/b.ts", Op: "write"})
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app.ts")
	if err := os.WriteFile(target, []byte("export const x = 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan []Event, 1)
	w := New([]string{dir}, []string{".ts"}, 50*time.Millisecond, func(events []Event) {
		select {
		case got <- events:
		default:
		}
	})
	defer w.Stop()

	done := make(chan error, 1)
	go func() { done <- w.Watch() }()

	// Give the watcher time to register the tree.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(target, []byte("export const x = 2;"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case events := <-got:
		found := false
		for _, e := range events {
			if e.Path == target {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an event for %s, got %v", target, events)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change events")
	}

	w.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after Stop")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()

	got := make(chan []Event, 1)
	w := New([]string{dir}, []string{".ts"}, 50*time.Millisecond, func(events []Event) {
		select {
		case got <- events:
		default:
		}
	})
	defer w.Stop()
	go w.Watch()

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case events := <-got:
		t.Errorf("expected no events for .txt, got %v", events)
	case <-time.After(500 * time.Millisecond):
	}
}
