package watcher

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// PathKind is the structural type of a filesystem entry. KindAny only
// appears in selectors.
type PathKind int

const (
	KindAny PathKind = iota
	KindFile
	KindDirectory
	KindSymlink
	KindOther
)

var kindNames = map[PathKind]string{
	KindAny:       "any",
	KindFile:      "file",
	KindDirectory: "directory",
	KindSymlink:   "symlink",
	KindOther:     "other",
}

func (k PathKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PathKind(%d)", int(k))
}

// ParsePathKind converts a name produced by PathKind.String back to its
// value.
func ParsePathKind(s string) (PathKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown path type %q", ErrInvalidSelector, s)
}

// Snapshot is the last observed state of one path. Snapshots are values and
// are replaced, never mutated, when a path changes.
type Snapshot struct {
	ModTime time.Time
	Kind    PathKind
}

// Capture stats path without following symlinks. A symlink is reported as
// KindSymlink even when it points at a directory. The error from a path
// that no longer exists is returned unchanged.
func Capture(path string) (Snapshot, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ModTime: info.ModTime(), Kind: kindOf(info.Mode())}, nil
}

func kindOf(mode os.FileMode) PathKind {
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}
