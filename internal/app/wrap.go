package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ark/internal/text"
)

var (
	wrapWidth   int
	wrapIndent  int
	wrapHanging bool

	wrapCmd = &cobra.Command{
		Use:   "wrap [TEXT...]",
		Short: "Wrap text to a column width",
		Long: `Wrap TEXT, or standard input when no arguments are given, so that no
line reaches the column width. Paragraphs on standard input are separated by
blank lines and wrapped independently.`,
		Example: `  ark wrap --width 40 "some long sentence that needs wrapping"

  # Hanging indent of four columns
  ark wrap --indent 4 --hanging < notes.txt`,
		RunE: runWrap,
	}
)

func init() {
	wrapCmd.Flags().IntVarP(&wrapWidth, "width", "w", 0, "column width (default: text.width from config, else 78)")
	wrapCmd.Flags().IntVarP(&wrapIndent, "indent", "i", 0, "indent wrapped lines by this many columns")
	wrapCmd.Flags().BoolVar(&wrapHanging, "hanging", false, "leave the first line of each paragraph unindented")
}

func runWrap(cmd *cobra.Command, args []string) error {
	opts := text.Options{
		Width:       wrapWidth,
		Indent:      wrapIndent,
		IndentAfter: wrapHanging,
	}
	if opts.Width <= 0 {
		opts.Width = cfg.Text.Width
	}

	var paragraphs []string
	if len(args) > 0 {
		paragraphs = []string{strings.Join(args, " ")}
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		paragraphs = splitParagraphs(string(data))
	}

	b := text.NewBuilder()
	for i, p := range paragraphs {
		if i > 0 {
			b.Skip()
		}
		b.Push(p).Wrap(opts, false)
	}
	fmt.Fprintln(cmd.OutOrStdout(), b.String())
	return nil
}

// splitParagraphs splits s on blank lines, dropping empty paragraphs.
func splitParagraphs(s string) []string {
	var paragraphs []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paragraphs = append(paragraphs, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, strings.TrimSpace(line))
	}
	flush()
	return paragraphs
}
