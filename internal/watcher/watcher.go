package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PollInterval is the pause between scans of a running watcher.
const PollInterval = time.Second

// ErrInvalidRoot is returned by New when the root is not a directory.
var ErrInvalidRoot = errors.New("watch root must be an existing directory")

// ErrRunning is returned by Scan while the background loop owns the
// watcher.
var ErrRunning = errors.New("watcher is running")

// Logger receives the watcher's diagnostics. *output.Logger satisfies it.
type Logger interface {
	Dbg(msg string, indent int) bool
	Wrn(msg string, indent int) bool
}

type nopLogger struct{}

func (nopLogger) Dbg(string, int) bool { return false }
func (nopLogger) Wrn(string, int) bool { return false }

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithoutSignalHandler stops Begin from turning SIGINT into Stop.
func WithoutSignalHandler() Option {
	return func(w *Watcher) {
		w.handleSignals = false
	}
}

// Watcher polls a directory tree and dispatches hooks for the changes it
// finds.
type Watcher struct {
	root          string
	hooks         *Registry
	logger        Logger
	handleSignals bool
	interval      time.Duration

	// scanMu serializes scans; paths is only touched while it is held.
	scanMu sync.Mutex
	paths  map[string]Snapshot

	mu     sync.Mutex
	stopCh chan struct{}
}

// New creates a Watcher for root and performs the seeding scan, which
// records every existing entry without dispatching any events.
func New(root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	// The walk does not descend into a symlinked root.
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	w := &Watcher{
		root:          abs,
		hooks:         NewRegistry(),
		logger:        nopLogger{},
		handleSignals: true,
		interval:      PollInterval,
		paths:         make(map[string]Snapshot),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.scanMu.Lock()
	defer w.scanMu.Unlock()
	if err := w.scan(true, w.hooks); err != nil {
		return nil, fmt.Errorf("seeding scan failed: %w", err)
	}
	w.logger.Dbg(fmt.Sprintf("watching %s (%d entries)", w.root, len(w.paths)), 0)

	return w, nil
}

// Root returns the absolute path of the watched directory, with symlinks
// resolved.
func (w *Watcher) Root() string {
	return w.root
}

// Register adds h under sel.
func (w *Watcher) Register(sel Selector, h *Hook) error {
	return w.hooks.Register(sel, h)
}

// Hook registers fn under every selector and returns the resulting Hook.
// With no selectors fn is registered under (any, any), which is accepted
// but never matched by dispatch.
func (w *Watcher) Hook(fn HookFunc, selectors ...Selector) (*Hook, error) {
	if len(selectors) == 0 {
		selectors = []Selector{{Event: EventAny, Type: KindAny}}
	}
	h := NewHook("", fn)
	for _, sel := range selectors {
		if err := w.hooks.Register(sel, h); err != nil {
			return nil, err
		}
		if sel.Event == EventAny && sel.Type == KindAny {
			w.logger.Wrn("hook registered under (any, any) is never dispatched", 0)
		}
	}
	return h, nil
}

// Scan runs one scan pass, dispatching hooks for every change since the
// previous pass. It returns ErrRunning while the background loop is active.
func (w *Watcher) Scan() error {
	if w.Running() {
		return ErrRunning
	}
	w.scanMu.Lock()
	defer w.scanMu.Unlock()
	return w.scan(false, w.hooks)
}

// State returns a copy of the recorded snapshots keyed by absolute path.
func (w *Watcher) State() map[string]Snapshot {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	state := make(map[string]Snapshot, len(w.paths))
	for p, s := range w.paths {
		state[p] = s
	}
	return state
}
