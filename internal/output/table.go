// Package output provides terminal output utilities for ark.
//
// This package includes:
//   - A Logger writing timestamped, symbol-prefixed status lines
//   - Table rendering for watch state and the event journal
//   - Spinners for indeterminate operations
//
// Tables use plain text with ANSI color codes when writing to a terminal.
// Logger and Spinner are safe to use from multiple goroutines.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/ark/internal/store"
	"github.com/blackwell-systems/ark/internal/watcher"
)

// ANSI color codes for event and symbol display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderStateTable renders the recorded snapshots of a watcher, sorted by
// path. Paths are shown relative to root.
func RenderStateTable(root string, state map[string]watcher.Snapshot) string {
	if len(state) == 0 {
		return "No entries found.\n"
	}

	paths := make([]string, 0, len(state))
	for p := range state {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-16s %s\n", "Type", "Modified", "Path"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, p := range paths {
		snap := state[p]
		sb.WriteString(fmt.Sprintf("%-10s %-16s %s\n",
			snap.Kind,
			truncate(humanize.Time(snap.ModTime), 16),
			relPath(root, p)))
	}

	sb.WriteString(fmt.Sprintf("\n%s entries\n", humanize.Comma(int64(len(state)))))
	return sb.String()
}

// RenderJournalTable renders journal events in the order given.
func RenderJournalTable(events []*store.Event) string {
	if len(events) == 0 {
		return "No events recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-16s %-9s %-10s %s\n",
		"ID", "When", "Event", "Type", "Path"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, ev := range events {
		// Pad before colorizing so escape codes do not skew the columns.
		event := colorize(eventColor(ev.Event), fmt.Sprintf("%-9s", ev.Event))
		sb.WriteString(fmt.Sprintf("%-6d %-16s %s %-10s %s\n",
			ev.ID,
			truncate(humanize.Time(ev.ObservedAt), 16),
			event,
			ev.Type,
			ev.Path))
	}

	return sb.String()
}

// FormatEvent returns a one-line description of ev for log output, with
// the path relative to root. The event name is coloured when color is set,
// which callers take from the destination Logger.
func FormatEvent(ev watcher.Event, root string, color bool) string {
	kind := ev.Kind.String()
	if color {
		kind = eventColor(kind) + kind + colorReset
	}
	return fmt.Sprintf("%s %s %s", kind, ev.Type, relPath(root, ev.Path))
}

// eventColor returns the ANSI color code for an event name.
func eventColor(event string) string {
	switch strings.ToLower(event) {
	case "created":
		return colorGreen
	case "modified":
		return colorYellow
	case "deleted":
		return colorRed
	default:
		return colorGray
	}
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
