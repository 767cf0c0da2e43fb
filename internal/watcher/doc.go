// Package watcher reports changes under a directory tree by polling it.
//
// A Watcher keeps a snapshot (modification time and kind) of every entry
// below its root. Each scan walks the tree, compares it against the
// snapshots, and dispatches created, modified and deleted events to hooks
// registered for (event, kind) selectors. Entries whose name starts with a
// dot are skipped along with everything beneath them.
//
// Key features:
//   - Interval polling only (no OS notification APIs)
//   - Seeding scan at construction, so existing files are not "created"
//   - Selector-based hook dispatch with per-event deduplication
//   - Background poll loop with cooperative cancellation
//   - PID file helpers for running the loop as a detached process
//
// Example usage:
//
//	w, err := watcher.New("./src")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = w.Hook(func(path string, ev watcher.EventKind, kind watcher.PathKind) error {
//		fmt.Println(ev, kind, path)
//		return nil
//	}, watcher.Selector{Event: watcher.EventCreated, Type: watcher.KindAny})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Blocks until Stop is called, ctx is cancelled or SIGINT arrives.
//	if err := w.Begin(context.Background()); err != nil {
//		log.Fatal(err)
//	}
package watcher
