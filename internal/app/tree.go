package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/output"
	"github.com/blackwell-systems/ark/internal/watcher"
)

var treeCmd = &cobra.Command{
	Use:   "tree [DIR]",
	Short: "List the entries the watcher would track",
	Long: `Scan DIR (default: the current directory) the way 'ark watch' does and
print every tracked entry with its type and modification time. Dotfiles and
dot-directories are left out.`,
	Example: `  ark tree ./site`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	w, err := watcher.New(dirArg(args), watcher.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderStateTable(w.Root(), w.State()))
	return nil
}
