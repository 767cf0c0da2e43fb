package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/config"
	"github.com/blackwell-systems/ark/internal/output"
	"github.com/blackwell-systems/ark/internal/store"
	"github.com/blackwell-systems/ark/internal/watcher"
)

var (
	watchOn          []string
	watchJournal     string
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Poll a directory tree and run hooks on changes",
		Long: `Watch DIR (default: the current directory) for created, modified and
deleted entries and run hooks for them.

The tree is scanned once a second. Entries whose name starts with a dot are
ignored together with everything below them. Every event is logged; hooks
given with --on or in the config file run a command for matching events,
with ARK_PATH, ARK_EVENT and ARK_TYPE set in its environment and DIR as its
working directory.

Selectors have the form "EVENT [TYPE]" where EVENT is created, modified,
deleted or any, and TYPE is file, directory, symlink or any.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a detached background process
  • Stop: Stop a running daemon`,
		Example: `  # Rebuild when a file is created or modified (Ctrl+C to stop)
  ark watch ./site --on "created file=make build" --on "modified file=make build"

  # Record every event in the journal
  ark watch ./site --journal ~/.ark/journal.db

  # Run as background daemon
  ark watch ./site --daemon --on "any file=./sync.sh"

  # Stop running daemon
  ark watch --stop`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringArrayVar(&watchOn, "on", nil, `hook as "SELECTOR=COMMAND" (repeatable)`)
	watchCmd.Flags().StringVar(&watchJournal, "journal", "", "record events in this SQLite journal")
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.ark/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.ark/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Get default paths if not specified
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon(cmd)
	}

	rules, err := watchRules()
	if err != nil {
		return err
	}

	if watchDaemon {
		return startWatchDaemon(cmd, args)
	}

	journalPath := watchJournal
	if journalPath == "" {
		journalPath = cfg.Watch.Journal
	}
	var st *store.Store
	if journalPath != "" {
		st, err = openJournal(journalPath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	if watchDaemonChild {
		// Output is redirected to the log file by the parent.
		if err := watcher.WritePIDFile(watchPIDFile); err != nil {
			return err
		}
		defer watcher.RemovePIDFile(watchPIDFile)
	}

	w, err := buildWatcher(dirArg(args), rules, st, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	// Timestamps count from the start of the watch, not from seeding.
	logger.Timer().Reset()
	logger.Msg(fmt.Sprintf("watching %s", w.Root()), 0)
	if !watchDaemonChild {
		logger.Msg("press Ctrl+C to stop", 0)
	}
	if err := w.Begin(ctx); err != nil {
		return fmt.Errorf("watcher stopped: %w", err)
	}
	logger.Msg("stopped", 0)
	return nil
}

// watchRules returns the hooks from the config file followed by the ones
// given with --on.
func watchRules() ([]config.HookRule, error) {
	rules := append([]config.HookRule(nil), cfg.Watch.Hooks...)
	for _, v := range watchOn {
		rule, err := parseOnFlag(v)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func stopWatchDaemon(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon...")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startWatchDaemon(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dir, err := filepath.Abs(dirArg(args))
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dirArg(args), err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", watcher.ErrInvalidRoot, dir)
	}

	spinner := output.NewSpinner("Starting daemon...")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StartDetached(daemonChildArgs(dir), watchPIDFile, watchLogFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Fprintf(out, "\nWatching %s\n", dir)
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: ark watch --stop\n")

	return nil
}

// daemonChildArgs returns the arguments of the detached child process,
// rebuilt from the parsed flags so relative paths survive the re-exec.
func daemonChildArgs(absDir string) []string {
	args := []string{"watch", absDir, "--daemon-child", "--pid-file", watchPIDFile}
	for _, on := range watchOn {
		args = append(args, "--on", on)
	}
	if watchJournal != "" {
		if abs, err := filepath.Abs(watchJournal); err == nil {
			args = append(args, "--journal", abs)
		}
	}
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			args = append(args, "--config", abs)
		}
	}
	if quiet {
		args = append(args, "--quiet")
	}
	if verbose {
		args = append(args, "--verbose")
	}
	if noTime {
		args = append(args, "--no-time")
	}
	return args
}
