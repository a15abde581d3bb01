package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/tui"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print a briefing of the run so far",
	Long: `Print a markdown briefing of the planning run: progress, the
decisions recorded for every completed phase, and any stale phases.

The briefing is what you hand to whoever (or whatever) picks the planning
session back up. It is rendered for the terminal when standard output is a
TTY and printed as plain markdown when piped.

Examples:
  planctl context
  planctl context > BRIEFING.md`,
	Args: cobra.NoArgs,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	plan, paths, err := cmdCtx.LoadPlan()
	if err != nil {
		return err
	}
	mgr := checkpoint.NewManager(paths, plan)

	briefing, err := mgr.Context()
	if err != nil {
		return err
	}

	if tui.IsInteractive() && !cmdCtx.NoColor && !cmdCtx.StructuredOutput() {
		if rendered, ok := renderMarkdown(briefing); ok {
			fmt.Print(rendered)
			return nil
		}
	}
	fmt.Println(briefing)
	return nil
}

// renderMarkdown renders the briefing for a terminal. Any renderer problem
// falls back to the plain markdown; the briefing must always come out.
func renderMarkdown(md string) (string, bool) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", false
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", false
	}
	return out, true
}
