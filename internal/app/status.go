package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/watcher"
)

var (
	statusPIDFile string
	statusJournal string

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show watch daemon and journal status",
		Long: `Report whether a background 'ark watch --daemon' is running and summarize
the event journal it writes to.`,
		Example: `  # Check the default daemon and journal
  ark status

  # Check a daemon started with a custom PID file
  ark status --pid-file /tmp/site.pid --journal ./events.db`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
)

// label pads the field names of the status report.
const label = "%-10s"

func init() {
	statusCmd.Flags().StringVar(&statusPIDFile, "pid-file", "", "daemon PID file (default: ~/.ark/watch.pid)")
	statusCmd.Flags().StringVar(&statusJournal, "journal", "", "journal path (default: watch.journal from config, else ~/.ark/journal.db)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	pidFile := statusPIDFile
	if pidFile == "" {
		p, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get PID file path: %w", err)
		}
		pidFile = p
	}

	journal := statusJournal
	if journal == "" {
		journal = cfg.Watch.Journal
	}
	if journal == "" {
		p, err := getDefaultJournal()
		if err != nil {
			return fmt.Errorf("failed to get journal path: %w", err)
		}
		journal = p
	}

	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		pid, _ := watcher.ReadPID(pidFile)
		fmt.Fprintf(out, label+"running (since %s, PID %d)\n", "Watcher:", fileAge(pidFile), pid)
	} else {
		fmt.Fprintf(out, label+"stopped (run 'ark watch --daemon')\n", "Watcher:")
	}

	return journalStatus(out, journal)
}

// journalStatus prints the journal lines of the status report.
func journalStatus(out io.Writer, path string) error {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(out, label+"none (run 'ark watch --journal %s')\n", "Journal:", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat journal: %w", err)
	}

	st, err := openExistingJournal(path)
	if err != nil {
		return err
	}
	defer st.Close()

	total, err := st.CountEvents()
	if err != nil {
		return err
	}
	recent, err := st.CountSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, label+"%s (%s)\n", "Journal:", path, humanize.Bytes(uint64(fi.Size())))
	fmt.Fprintf(out, label+"%s total, %s in last 24h\n", "Events:",
		humanize.Comma(int64(total)), humanize.Comma(int64(recent)))

	last, err := st.ListEvents(1)
	if err != nil {
		return err
	}
	if len(last) > 0 {
		ev := last[0]
		fmt.Fprintf(out, label+"%s %s %s (%s)\n", "Last:", ev.Event, ev.Type, ev.Path, humanize.Time(ev.ObservedAt))
	}
	return nil
}

// fileAge returns a human-readable age of path, used as a proxy for the
// daemon start time.
func fileAge(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}
	return humanize.Time(fi.ModTime())
}
