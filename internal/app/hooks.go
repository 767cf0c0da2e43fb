package app

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/ark/internal/config"
	"github.com/blackwell-systems/ark/internal/output"
	"github.com/blackwell-systems/ark/internal/store"
	"github.com/blackwell-systems/ark/internal/watcher"
)

// everyEvent selects each concrete event for any path type. (any, any) is
// never dispatched, so hooks that want everything register all three.
var everyEvent = []watcher.Selector{
	{Event: watcher.EventCreated, Type: watcher.KindAny},
	{Event: watcher.EventModified, Type: watcher.KindAny},
	{Event: watcher.EventDeleted, Type: watcher.KindAny},
}

// parseOnFlag splits a --on value of the form "SELECTOR=COMMAND".
func parseOnFlag(value string) (config.HookRule, error) {
	on, run, ok := strings.Cut(value, "=")
	if !ok {
		return config.HookRule{}, fmt.Errorf("invalid --on %q: expected SELECTOR=COMMAND", value)
	}
	rule := config.HookRule{On: strings.TrimSpace(on), Run: strings.TrimSpace(run)}
	if _, err := rule.Selector(); err != nil {
		return config.HookRule{}, fmt.Errorf("invalid --on %q: %w", value, err)
	}
	if _, err := rule.Args(); err != nil {
		return config.HookRule{}, fmt.Errorf("invalid --on %q: %w", value, err)
	}
	return rule, nil
}

// logHook writes every event to the logger.
func logHook(log *output.Logger, root string) watcher.HookFunc {
	return func(path string, ev watcher.EventKind, kind watcher.PathKind) error {
		log.Msg(output.FormatEvent(watcher.Event{Path: path, Kind: ev, Type: kind}, root, log.Color()), 0)
		return nil
	}
}

// journalHook records every event in st. A failed write stops the watcher.
func journalHook(st *store.Store) watcher.HookFunc {
	return func(path string, ev watcher.EventKind, kind watcher.PathKind) error {
		_, err := st.InsertEvent(&store.Event{
			Path:  path,
			Event: ev.String(),
			Type:  kind.String(),
		})
		return err
	}
}

// commandHook runs rule's command for each event, with ARK_PATH, ARK_EVENT
// and ARK_TYPE set and root as the working directory. A failing command is
// reported as a warning and does not stop the watcher.
func commandHook(rule config.HookRule, root string, log *output.Logger) (watcher.HookFunc, error) {
	args, err := rule.Args()
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", rule.Run, err)
	}

	return func(path string, ev watcher.EventKind, kind watcher.PathKind) error {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"ARK_PATH="+path,
			"ARK_EVENT="+ev.String(),
			"ARK_TYPE="+kind.String(),
		)

		out, err := cmd.CombinedOutput()
		if err != nil {
			log.Wrn(fmt.Sprintf("hook %q failed: %v", rule.Run, err), 1)
			sayLines(log.Wrn, out)
			return nil
		}
		log.Dbg(fmt.Sprintf("hook %q ok", rule.Run), 1)
		sayLines(log.Dbg, out)
		return nil
	}, nil
}

func sayLines(say func(string, int) bool, out []byte) {
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			say(line, 2)
		}
	}
}

// buildWatcher creates a watcher on dir with the logging hook, the journal
// hook (when st is non-nil) and one command hook per rule.
func buildWatcher(dir string, rules []config.HookRule, st *store.Store, log *output.Logger, opts ...watcher.Option) (*watcher.Watcher, error) {
	opts = append([]watcher.Option{watcher.WithLogger(log)}, opts...)
	w, err := watcher.New(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if _, err := w.Hook(logHook(log, w.Root()), everyEvent...); err != nil {
		return nil, err
	}
	if st != nil {
		if _, err := w.Hook(journalHook(st), everyEvent...); err != nil {
			return nil, err
		}
	}

	for _, rule := range rules {
		sel, err := rule.Selector()
		if err != nil {
			return nil, fmt.Errorf("invalid hook selector %q: %w", rule.On, err)
		}
		fn, err := commandHook(rule, w.Root(), log)
		if err != nil {
			return nil, err
		}
		// A rule on "any" means every event here, unlike (any, any) in the
		// registry.
		sels := []watcher.Selector{sel}
		if sel.Event == watcher.EventAny && sel.Type == watcher.KindAny {
			sels = everyEvent
		}
		h := watcher.NewHook(rule.Run, fn)
		for _, s := range sels {
			if err := w.Register(s, h); err != nil {
				return nil, err
			}
		}
		log.Dbg(fmt.Sprintf("hook on %s: %s", sel, rule.Run), 1)
	}

	return w, nil
}
