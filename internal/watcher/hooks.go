package watcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidSelector is returned when an event or path type outside the
// accepted set is used to register or dispatch a hook.
var ErrInvalidSelector = errors.New("invalid hook selector")

// EventKind is the kind of change a scan detected. EventAny only appears in
// selectors.
type EventKind int

const (
	EventAny EventKind = iota
	EventCreated
	EventModified
	EventDeleted
)

var eventNames = map[EventKind]string{
	EventAny:      "any",
	EventCreated:  "created",
	EventModified: "modified",
	EventDeleted:  "deleted",
}

func (e EventKind) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(e))
}

// ParseEventKind converts a name produced by EventKind.String back to its
// value.
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for e, name := range eventNames {
		if name == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown event %q", ErrInvalidSelector, s)
}

// Selector picks which events a hook receives.
type Selector struct {
	Event EventKind
	Type  PathKind
}

func (s Selector) String() string {
	return s.Event.String() + " " + s.Type.String()
}

// Validate checks that the selector uses an accepted event and type.
// KindOther cannot be selected explicitly.
func (s Selector) Validate() error {
	if _, ok := eventNames[s.Event]; !ok {
		return fmt.Errorf("%w: event %s", ErrInvalidSelector, s.Event)
	}
	switch s.Type {
	case KindAny, KindFile, KindDirectory, KindSymlink:
		return nil
	}
	return fmt.Errorf("%w: type %s", ErrInvalidSelector, s.Type)
}

// ParseSelector parses "EVENT [TYPE]", e.g. "created", "modified file" or
// "any symlink". A missing type means any.
func ParseSelector(s string) (Selector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}

	ev, err := ParseEventKind(fields[0])
	if err != nil {
		return Selector{}, err
	}
	sel := Selector{Event: ev, Type: KindAny}
	if len(fields) == 2 {
		if sel.Type, err = ParsePathKind(fields[1]); err != nil {
			return Selector{}, err
		}
	}
	return sel, sel.Validate()
}

// HookFunc receives one event. A non-nil error aborts the current scan.
type HookFunc func(path string, event EventKind, kind PathKind) error

// Hook is a registered callback. Hooks are compared by pointer, so one Hook
// registered under several selectors still runs once per event.
type Hook struct {
	Name string
	fn   HookFunc
}

// NewHook wraps fn in a Hook.
func NewHook(name string, fn HookFunc) *Hook {
	return &Hook{Name: name, fn: fn}
}

func (h *Hook) String() string {
	if h.Name != "" {
		return h.Name
	}
	return fmt.Sprintf("hook@%p", h)
}

// Registry maps selectors to the hooks registered under them, in
// registration order.
type Registry struct {
	mu    sync.RWMutex
	table map[Selector][]*Hook
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{table: make(map[Selector][]*Hook)}
}

// Register adds h under sel. Registering the same hook under the same
// selector again has no effect.
func (r *Registry) Register(sel Selector, h *Hook) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	if h == nil || h.fn == nil {
		return errors.New("hook cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.table[sel] {
		if existing == h {
			return nil
		}
	}
	r.table[sel] = append(r.table[sel], h)
	return nil
}

// Match returns the hooks that fire for a concrete event: the union of
// those registered under (event, kind), (any, kind) and (event, any), in
// that order, each hook at most once. Hooks registered only under
// (any, any) are not included.
func (r *Registry) Match(event EventKind, kind PathKind) ([]*Hook, error) {
	if _, ok := eventNames[event]; !ok {
		return nil, fmt.Errorf("%w: event %s", ErrInvalidSelector, event)
	}
	if _, ok := kindNames[kind]; !ok {
		return nil, fmt.Errorf("%w: type %s", ErrInvalidSelector, kind)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := []Selector{
		{Event: event, Type: kind},
		{Event: EventAny, Type: kind},
		{Event: event, Type: KindAny},
	}

	var hooks []*Hook
	seen := make(map[*Hook]bool)
	for _, sel := range terms {
		for _, h := range r.table[sel] {
			if seen[h] {
				continue
			}
			seen[h] = true
			hooks = append(hooks, h)
		}
	}
	return hooks, nil
}

// Dispatch runs every hook matching (event, kind) with path. It stops at
// the first hook that returns an error.
func (r *Registry) Dispatch(event EventKind, kind PathKind, path string) error {
	hooks, err := r.Match(event, kind)
	if err != nil {
		return err
	}
	for _, h := range hooks {
		if err := h.fn(path, event, kind); err != nil {
			return fmt.Errorf("hook %s: %w", h, err)
		}
	}
	return nil
}

// Clone returns an independent copy of the registry. Later registrations on
// either copy are not visible to the other.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for sel, hooks := range r.table {
		c.table[sel] = append([]*Hook(nil), hooks...)
	}
	return c
}
