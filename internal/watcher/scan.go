package watcher

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Event describes one detected change.
type Event struct {
	Path string
	Kind EventKind
	Type PathKind
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %s", e.Kind, e.Type, e.Path)
}

// scan walks the tree, dispatches an event for each created or modified
// path as it is reached and for each deleted path after the walk, and
// updates w.paths. A seeding scan records paths without dispatching.
// The caller must hold w.scanMu.
func (w *Watcher) scan(seeding bool, hooks *Registry) error {
	seen := make(map[string]bool, len(w.paths))

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == w.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		snap, err := Capture(path)
		if err != nil {
			return err
		}

		prev, known := w.paths[path]
		w.paths[path] = snap
		seen[path] = true

		switch {
		case !known && !seeding:
			return w.emit(hooks, Event{Path: path, Kind: EventCreated, Type: snap.Kind})
		case known && snap.ModTime.After(prev.ModTime):
			return w.emit(hooks, Event{Path: path, Kind: EventModified, Type: snap.Kind})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.root, err)
	}

	var deleted []string
	for path := range w.paths {
		if !seen[path] {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(deleted)

	for _, path := range deleted {
		last := w.paths[path]
		delete(w.paths, path)
		if err := w.emit(hooks, Event{Path: path, Kind: EventDeleted, Type: last.Kind}); err != nil {
			return fmt.Errorf("scan %s: %w", w.root, err)
		}
	}
	return nil
}

func (w *Watcher) emit(hooks *Registry, ev Event) error {
	w.logger.Dbg(ev.String(), 1)
	if err := hooks.Dispatch(ev.Kind, ev.Type, ev.Path); err != nil {
		return fmt.Errorf("%s: %w", ev.Path, err)
	}
	return nil
}
