package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/ark/internal/store"
)

// dirArg returns the first positional argument, or "." when there is none.
func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// openJournal opens the journal at path and creates its schema.
func openJournal(path string) (*store.Store, error) {
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return st, nil
}

// openExistingJournal opens the journal at path without creating it.
func openExistingJournal(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", store.ErrNotInitialized, path)
		}
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return st, nil
}
