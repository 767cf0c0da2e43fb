package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/gitver"
)

var (
	versionProject string
	versionDefault string
	versionNoDev   bool
	versionLine    bool

	versionCmd = &cobra.Command{
		Use:   "version [PATH]",
		Short: "Print the version of a git repository",
		Long: `Print a version number derived from the most recent tag of the git
repository at PATH (default: the current directory).

Tags are expected in a two number format like 1.5. The number of commits
since the tag becomes the third component, so five commits after 1.5 the
version is 1.5.5. Uncommitted changes append ".dev" unless --no-dev is given.`,
		Example: `  # Version of the current repository
  ark version

  # "<project> <version> <revision>" line for another repository
  ark version ~/src/tool --line --project tool

  # Fall back to a fixed version outside a repository
  ark version /tmp --default 0.0.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVersion,
	}
)

func init() {
	versionCmd.Flags().StringVar(&versionProject, "project", "", "project name for --line (default: base name of PATH)")
	versionCmd.Flags().StringVar(&versionDefault, "default", "", "version to print when PATH is not a repository")
	versionCmd.Flags().BoolVar(&versionNoDev, "no-dev", false, "do not append .dev for uncommitted changes")
	versionCmd.Flags().BoolVar(&versionLine, "line", false, "print project, version and revision")
}

func runVersion(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	ctx := cmd.Context()

	var (
		v   string
		err error
	)
	if versionLine {
		v, err = gitver.VersionLine(ctx, path, gitver.LineOptions{
			Project: versionProject,
			Default: versionDefault,
			MarkDev: !versionNoDev,
		})
	} else {
		v, err = gitver.Version(ctx, path, gitver.Options{
			Default: versionDefault,
			MarkDev: !versionNoDev,
		})
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}
