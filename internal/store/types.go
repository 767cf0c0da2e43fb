package store

import "time"

// Event is one change recorded in the journal.
type Event struct {
	ID         int64
	Path       string
	Event      string // "created", "modified" or "deleted"
	Type       string // "file", "directory", "symlink" or "other"
	ObservedAt time.Time
}
