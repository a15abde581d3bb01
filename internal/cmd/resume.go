package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/resume"
	"github.com/planctl/planctl/internal/tui"
	"github.com/planctl/planctl/internal/ux"
)

var resumePhase int

var resumeCmd = &cobra.Command{
	Use:   "resume [directory]",
	Short: "Pick up an interrupted planning run",
	Long: `Show where the planning run left off and which phase comes next.

Without a directory argument the enclosing plan directory is used; when
none is found, the configured root is searched and, if several plans turn
up, you pick one. Resume orients; it does not execute anything. Use
'planctl run' to execute the next phase's sub-tasks.

An explicit --phase may point at the next pending phase or at any
completed one (to redo it); jumping further ahead is rejected because the
skipped phases have no checkpoints yet.

Examples:
  planctl resume
  planctl resume plans/lunarbase
  planctl resume --phase 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().IntVar(&resumePhase, "phase", 0, "resume at this phase instead of the next pending one")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	dir := cmdCtx.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if !planfile.Exists(dir) {
		dir, err = pickPlan(cmdCtx)
		if err != nil {
			return err
		}
	}

	plan, err := planfile.Load(dir)
	if err != nil {
		return err
	}
	paths := planfile.NewPaths(dir)
	mgr := checkpoint.NewManager(paths, plan)

	st, err := resume.Compute(mgr, plan)
	if err != nil {
		return err
	}

	target := st.Next
	explicit := cmd.Flags().Changed("phase")
	if explicit {
		target = phase.Phase(resumePhase)
		if err := st.ValidateTarget(target); err != nil {
			return err
		}
	}

	if cmdCtx.StructuredOutput() {
		f, err := cmdCtx.Formatter()
		if err != nil {
			return err
		}
		return f.Format(st)
	}

	fmt.Printf("Plan %q (%s), run %s\n", st.Project, st.PlanType, st.RunID)
	if st.HasProgress {
		fmt.Printf("Progress: %.0f%% — last completed: phase %d %s\n", st.Percent, int(st.LastCompleted), st.LastCompleted)
	} else {
		fmt.Println("No phases completed yet.")
	}
	for _, pi := range st.Phases {
		if pi.Stale {
			fmt.Printf("⚠ Phase %d %s is stale: %s\n", int(pi.Phase), pi.Name, pi.StaleReason)
		}
	}

	if st.Done && !explicit {
		fmt.Println("\nAll phases are complete.")
		fmt.Println("Revise a phase with 'planctl refine <phase> --feedback ...' if something changed.")
		return nil
	}

	verb := "Next"
	if explicit {
		verb = "Resuming at"
	}
	fmt.Printf("\n%s: phase %d %s\n", verb, int(target), target)
	fmt.Printf("  Execute its sub-tasks:  planctl run %d\n", int(target))
	fmt.Printf("  Record it when done:    planctl save %d --summary \"...\"\n", int(target))
	return nil
}

// pickPlan finds the plan to resume when the resolved directory holds none:
// search the configured root, use a single hit directly, and ask when there
// are several.
func pickPlan(cmdCtx *CommandContext) (string, error) {
	plans, err := resume.Discover(cmdCtx.Config.Root)
	if err != nil {
		return "", ux.FormatError(err, "searching for plans")
	}

	switch len(plans) {
	case 0:
		return "", errors.NewPlanNotFoundError(cmdCtx.Dir)
	case 1:
		fmt.Printf("Using plan in %s\n", plans[0].Dir)
		return plans[0].Dir, nil
	}

	if !cmdCtx.CanPrompt() {
		dirs := make([]string, len(plans))
		for i, dp := range plans {
			dirs[i] = dp.Dir
		}
		return "", ux.NewErrorWithSuggestion(
			fmt.Errorf("found %d plans under %s: %s", len(plans), cmdCtx.Config.Root, strings.Join(dirs, ", ")),
			"Pass the plan directory explicitly: 'planctl resume <directory>'",
		)
	}

	choices := make([]tui.Choice, len(plans))
	for i, dp := range plans {
		choices[i] = tui.Choice{
			Label: fmt.Sprintf("%s — %s (%s plan)", dp.Dir, dp.Plan.Project, dp.Plan.Type),
			Value: dp.Dir,
		}
	}
	return tui.PromptForChoice("Several plans found. Which one?", choices)
}
