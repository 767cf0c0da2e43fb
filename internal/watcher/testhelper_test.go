package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// newTestWatcher creates a watcher on dir with signal handling disabled and
// a short poll interval.
func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := New(dir, WithoutSignalHandler())
	if err != nil {
		t.Fatalf("New(%s) error = %v", dir, err)
	}
	w.interval = 10 * time.Millisecond
	t.Cleanup(w.Stop)
	return w
}

// recorder collects the events delivered to its hook.
type recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan Event
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan Event, 64)}
}

func (r *recorder) hook(path string, ev EventKind, kind PathKind) error {
	e := Event{Path: path, Kind: ev, Type: kind}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	select {
	case r.notify <- e:
	default:
	}
	return nil
}

// take returns and clears the recorded events.
func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// waitFor blocks until an event matching want arrives or the timeout hits.
func (r *recorder) waitFor(t *testing.T, want Event, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case e := <-r.notify:
			if e == want {
				return
			}
		case <-deadline:
			t.Fatalf("event %v not received within %v", want, timeout)
		}
	}
}

// only returns the events for path.
func only(events []Event, path string) []Event {
	var out []Event
	for _, e := range events {
		if e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

// writeFile creates path (and its parents) with some content.
func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// touch moves the modification time of path an hour into the future so the
// change is visible regardless of filesystem timestamp granularity.
func touch(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("failed to touch %s: %v", path, err)
	}
}

// tempRoot returns a temp dir with symlinks resolved, so paths reported by
// the watcher compare equal to paths built by the test.
func tempRoot(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return dir
}
