package store

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so stored timestamps sort lexically. The driver
// hands TIMESTAMP columns back in RFC 3339 form with trailing zeros trimmed,
// so reads go through parseTime.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// InsertEvent appends ev to the journal and returns its ID. A zero
// ObservedAt is replaced with the current time.
func (s *Store) InsertEvent(ev *Event) (int64, error) {
	if ev.ObservedAt.IsZero() {
		ev.ObservedAt = time.Now()
	}

	query := `
		INSERT INTO journal_events (path, event, path_type, observed_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		ev.Path,
		ev.Event,
		ev.Type,
		ev.ObservedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event for %s: %w", ev.Path, classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get event ID: %w", err)
	}
	ev.ID = id
	return id, nil
}

// ListEvents returns the most recent events, newest first. A limit of zero
// or less returns every event.
func (s *Store) ListEvents(limit int) ([]*Event, error) {
	query := `
		SELECT id, path, event, path_type, observed_at
		FROM journal_events
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", classify(err))
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var ev Event
		var observedAt string

		if err := rows.Scan(&ev.ID, &ev.Path, &ev.Event, &ev.Type, &observedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		ev.ObservedAt, err = parseTime(observedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse observed_at for event %d: %w", ev.ID, err)
		}

		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// CountEvents returns the number of events in the journal.
func (s *Store) CountEvents() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM journal_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", classify(err))
	}
	return count, nil
}

// CountSince returns the number of events observed at or after t.
func (s *Store) CountSince(t time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM journal_events WHERE observed_at >= ?",
		t.UTC().Format(timeLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent events: %w", classify(err))
	}
	return count, nil
}

// LastEventFor returns the most recent event recorded for path, or nil if
// there is none.
func (s *Store) LastEventFor(path string) (*Event, error) {
	query := `
		SELECT id, path, event, path_type, observed_at
		FROM journal_events
		WHERE path = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var ev Event
	var observedAt string
	err := s.db.QueryRow(query, path).Scan(&ev.ID, &ev.Path, &ev.Event, &ev.Type, &observedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last event for %s: %w", path, classify(err))
	}

	ev.ObservedAt, err = parseTime(observedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse observed_at: %w", err)
	}
	return &ev, nil
}

// PruneBefore deletes events observed before t and returns how many were
// removed.
func (s *Store) PruneBefore(t time.Time) (int64, error) {
	result, err := s.db.Exec(
		"DELETE FROM journal_events WHERE observed_at < ?",
		t.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", classify(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned events: %w", err)
	}
	return n, nil
}
