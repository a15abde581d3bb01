package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/resume"
	"github.com/planctl/planctl/internal/tui"
	"github.com/planctl/planctl/internal/ux"
)

var phasesInteractive bool

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List the phases of the pipeline",
	Long: `List the planning phases with their canonical numbers, estimated
durations, and dependency fan-out.

Inside a plan directory the listing is annotated with checkpoint state;
--interactive opens a browsable view with per-phase details.

Examples:
  planctl phases
  planctl phases --interactive`,
	Args: cobra.NoArgs,
	RunE: runPhases,
}

func init() {
	phasesCmd.Flags().BoolVar(&phasesInteractive, "interactive", false, "browse the phases in a full-screen view")

	rootCmd.AddCommand(phasesCmd)
}

func runPhases(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	plan, paths, err := cmdCtx.LoadPlan()
	if err != nil {
		// Outside a plan the static catalog still answers "what are the
		// phases"; only the annotations need one.
		printPhaseCatalog()
		return nil
	}
	mgr := checkpoint.NewManager(paths, plan)
	st, err := resume.Compute(mgr, plan)
	if err != nil {
		return err
	}

	if phasesInteractive {
		if !tui.IsInteractive() {
			return ux.NewErrorWithSuggestion(
				fmt.Errorf("--interactive needs a terminal"),
				"Drop --interactive, or use 'planctl status' for the plain listing",
			)
		}
		return tui.RunPhaseBrowser(st, mgr)
	}

	if cmdCtx.StructuredOutput() {
		f, err := cmdCtx.Formatter()
		if err != nil {
			return err
		}
		return f.Format(st.Phases)
	}

	fmt.Printf("Phases of %q (%s plan):\n\n", st.Project, st.PlanType)
	for _, pi := range st.Phases {
		fmt.Printf("  %s\n", formatPhaseLine(pi))
	}
	return nil
}

func printPhaseCatalog() {
	fmt.Println("Planning phases:")
	fmt.Println()
	for _, ph := range phase.All() {
		fmt.Printf("  [%d] %-24s ~%-6s", int(ph), ph.String(), ph.Duration())
		if deps := phase.Dependents(ph); len(deps) > 0 {
			nums := make([]string, len(deps))
			for i, dep := range deps {
				nums[i] = strconv.Itoa(int(dep))
			}
			fmt.Printf(" feeds phases %s", strings.Join(nums, ", "))
		}
		fmt.Println()
	}
	fmt.Println()
	fmt.Println("Full plans run phases 1-6; tech plans run 2, 3, 4, and 6.")
	fmt.Println("Run this inside a plan directory to see checkpoint state.")
}
