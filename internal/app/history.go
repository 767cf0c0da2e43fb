package app

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/output"
	"github.com/blackwell-systems/ark/internal/store"
)

var (
	historyJournal string
	historyLimit   int
	historyPrune   time.Duration
	historyPath    string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show events recorded by 'ark watch --journal'",
		Long: `Print the most recent events from the event journal, newest first.

With --prune, events older than the given age are deleted first. With
--path, only the most recent event for that path is shown.`,
		Example: `  # Last 20 events
  ark history

  # Everything, from a specific journal
  ark history --journal ./events.db --limit 0

  # Drop events older than a week
  ark history --prune 168h

  # Last event recorded for one path
  ark history --path ./site/index.html`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().StringVar(&historyJournal, "journal", "", "journal path (default: watch.journal from config, else ~/.ark/journal.db)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of events to show (0 for all)")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete events older than this age first")
	historyCmd.Flags().StringVar(&historyPath, "path", "", "show only the last event recorded for this path")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path := historyJournal
	if path == "" {
		path = cfg.Watch.Journal
	}
	if path == "" {
		p, err := getDefaultJournal()
		if err != nil {
			return err
		}
		path = p
	}

	st, err := openExistingJournal(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if historyPrune > 0 {
		n, err := st.PruneBefore(time.Now().Add(-historyPrune))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %s events older than %s\n\n", humanize.Comma(n), historyPrune)
	}

	if historyPath != "" {
		return lastEventFor(out, st, historyPath)
	}

	events, err := st.ListEvents(historyLimit)
	if err != nil {
		return err
	}
	total, err := st.CountEvents()
	if err != nil {
		return err
	}

	fmt.Fprint(out, output.RenderJournalTable(events))
	if len(events) > 0 {
		fmt.Fprintf(out, "\nShowing %s of %s events\n",
			humanize.Comma(int64(len(events))), humanize.Comma(int64(total)))
	}
	return nil
}

// lastEventFor prints the most recent journal entry for path.
func lastEventFor(out io.Writer, st *store.Store, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	ev, err := st.LastEventFor(abs)
	if err != nil {
		return err
	}
	if ev == nil {
		fmt.Fprintf(out, "No events recorded for %s.\n", abs)
		return nil
	}
	fmt.Fprint(out, output.RenderJournalTable([]*store.Event{ev}))
	return nil
}
