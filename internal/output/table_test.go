package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/ark/internal/store"
	"github.com/blackwell-systems/ark/internal/watcher"
)

func TestRenderStateTable(t *testing.T) {
	root := filepath.FromSlash("/work")
	now := time.Now()

	tests := []struct {
		name     string
		state    map[string]watcher.Snapshot
		contains []string
		order    []string
	}{
		{
			name:     "empty state",
			state:    map[string]watcher.Snapshot{},
			contains: []string{"No entries found"},
		},
		{
			name: "entries sorted by path",
			state: map[string]watcher.Snapshot{
				filepath.Join(root, "zeta.txt"):     {ModTime: now.Add(-2 * time.Hour), Kind: watcher.KindFile},
				filepath.Join(root, "alpha"):        {ModTime: now, Kind: watcher.KindDirectory},
				filepath.Join(root, "alpha", "lnk"): {ModTime: now, Kind: watcher.KindSymlink},
			},
			contains: []string{"Type", "Modified", "Path", "directory", "symlink", "2 hours ago", "3 entries"},
			order:    []string{"alpha\n", filepath.Join("alpha", "lnk"), "zeta.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderStateTable(root, tt.state)

			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("RenderStateTable() missing %q in output:\n%s", want, result)
				}
			}

			last := -1
			for _, want := range tt.order {
				idx := strings.Index(result, want)
				if idx < 0 || idx < last {
					t.Errorf("RenderStateTable() %q out of order in output:\n%s", want, result)
				}
				last = idx
			}
			if strings.Contains(result, root+string(filepath.Separator)) {
				t.Errorf("RenderStateTable() shows absolute paths:\n%s", result)
			}
		})
	}
}

func TestRenderJournalTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Now()

	tests := []struct {
		name     string
		events   []*store.Event
		contains []string
	}{
		{
			name:     "no events",
			events:   nil,
			contains: []string{"No events recorded"},
		},
		{
			name: "events",
			events: []*store.Event{
				{ID: 12, Path: "/w/a.txt", Event: "deleted", Type: "file", ObservedAt: now.Add(-3 * 24 * time.Hour)},
				{ID: 7, Path: "/w/sub", Event: "created", Type: "directory", ObservedAt: now},
			},
			contains: []string{"ID", "When", "12", "deleted", "3 days ago", "/w/sub", "directory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderJournalTable(tt.events)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("RenderJournalTable() missing %q in output:\n%s", want, result)
				}
			}
			if strings.Contains(result, "\033[") {
				t.Errorf("RenderJournalTable() emitted color with NO_COLOR set")
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	root := filepath.FromSlash("/work")

	tests := []struct {
		name string
		ev   watcher.Event
		want string
	}{
		{
			name: "relative path",
			ev:   watcher.Event{Path: filepath.Join(root, "src", "a.go"), Kind: watcher.EventModified, Type: watcher.KindFile},
			want: "modified file " + filepath.Join("src", "a.go"),
		},
		{
			name: "path outside root",
			ev:   watcher.Event{Path: filepath.FromSlash("/elsewhere/b"), Kind: watcher.EventDeleted, Type: watcher.KindDirectory},
			want: "deleted directory " + filepath.FromSlash("/elsewhere/b"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEvent(tt.ev, root, false); got != tt.want {
				t.Errorf("FormatEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatEvent_ColorFollowsCaller(t *testing.T) {
	// Colour is decided by the destination, not by the environment.
	t.Setenv("NO_COLOR", "")
	root := filepath.FromSlash("/work")
	ev := watcher.Event{Path: filepath.Join(root, "a"), Kind: watcher.EventCreated, Type: watcher.KindFile}

	want := colorGreen + "created" + colorReset + " file a"
	if got := FormatEvent(ev, root, true); got != want {
		t.Errorf("FormatEvent(color) = %q, want %q", got, want)
	}
	if got := FormatEvent(ev, root, false); got != "created file a" {
		t.Errorf("FormatEvent(no color) = %q", got)
	}

	var buf bytes.Buffer
	log := NewLogger(LogConfig{Writer: &buf})
	if log.Color() {
		t.Error("Logger.Color() = true for a buffer writer")
	}
	log.Msg(FormatEvent(ev, root, log.Color()), 0)
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("logged event contains colour codes: %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
