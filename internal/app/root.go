package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/config"
	"github.com/blackwell-systems/ark/internal/output"
	"github.com/blackwell-systems/ark/internal/timer"
)

var (
	configPath string
	quiet      bool
	verbose    bool
	noTime     bool

	// Set by loadSettings before any subcommand runs.
	cfg    = config.Default()
	logger = output.Discard()

	// RootCmd is the root command for ark
	RootCmd = &cobra.Command{
		Use:   "ark",
		Short: "Small tools for watching trees, versioning repos and formatting text",
		Long: `ark bundles the shared pieces of small command-line tools: a polling
directory watcher that runs hooks on changes, git-tag based version strings,
and a text wrapper.

Examples:
  # Run a command whenever a file is created or modified
  ark watch ./site --on "created file=make build" --on "modified file=make build"

  # Print the version of the repository in the current directory
  ark version

  # Show what the watcher sees
  ark tree ./site

  # Show recent events recorded by 'ark watch --journal'
  ark history

  # Wrap text with a hanging indent
  echo "a long line ..." | ark wrap --width 40 --indent 4 --hanging`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadSettings,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/ark/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all log output")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug messages and warnings")
	RootCmd.PersistentFlags().BoolVar(&noTime, "no-time", false, "omit elapsed time from log lines")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(treeCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(wrapCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadSettings reads the config file and builds the logger. Flags override
// file values.
func loadSettings(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	cfg = loaded

	logger = output.NewLogger(output.LogConfig{
		Quiet:   quiet || cfg.Log.Quiet,
		Verbose: verbose || cfg.Log.Verbose,
		Timed:   cfg.Timed() && !noTime,
		Timer:   timer.New(cfg.Round()),
		Writer:  cmd.OutOrStdout(),
	})
	return nil
}

// stateDir returns ~/.ark, creating it if needed.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".ark")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ark directory: %w", err)
	}
	return dir, nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

// getDefaultJournal returns the default event journal path
func getDefaultJournal() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}
