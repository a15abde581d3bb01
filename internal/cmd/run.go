package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/progress"
	"github.com/planctl/planctl/internal/resume"
	"github.com/planctl/planctl/internal/runner"
	"github.com/planctl/planctl/internal/tui"
)

var runMaxParallel int

var runCmd = &cobra.Command{
	Use:   "run <phase>",
	Short: "Execute a phase's sub-tasks",
	Long: `Execute the sub-tasks configured for a phase in plan.yaml, writing
their outputs into the phase's output directory.

Sub-tasks run concurrently up to --max-parallel; a failing sub-task never
stops its siblings. The phase must be the next pending one or an already
completed one. run does not checkpoint: record the result with
'planctl save' once you are satisfied with the outputs.

Examples:
  planctl run 2
  planctl run 2 --max-parallel 1`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runMaxParallel, "max-parallel", 0, "max concurrent sub-tasks (default: PLANCTL_MAX_PARALLEL or 4)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ph, err := phase.Parse(args[0])
	if err != nil {
		return err
	}

	plan, paths, err := cmdCtx.LoadPlan()
	if err != nil {
		return err
	}
	mgr := checkpoint.NewManager(paths, plan)

	st, err := resume.Compute(mgr, plan)
	if err != nil {
		return err
	}
	if err := st.ValidateTarget(ph); err != nil {
		return err
	}

	if runMaxParallel > 0 {
		cmdCtx.Config.MaxParallel = runMaxParallel
	}
	r := runner.New(paths, plan, cmdCtx.Config)

	var stop func()
	if n := len(plan.SubtasksFor(ph)); n > 0 {
		ind := progress.New(
			fmt.Sprintf("Running %d sub-task(s) of phase %d %s", n, int(ph), ph),
			progress.Config{Animate: tui.IsInteractive() && !cmdCtx.NoColor},
		)
		ind.Start()
		stop = ind.Stop
	}

	var results []runner.Result
	err = withPlanLock(paths, func() error {
		var runErr error
		results, runErr = r.Run(cmd.Context(), ph)
		return runErr
	})
	if stop != nil {
		stop()
	}

	printRunResults(ph, results)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("Phase %d %s has no sub-tasks configured.\n", int(ph), ph)
		fmt.Printf("Work in %s by hand, then record the phase.\n", paths.PhaseOutputDir(ph))
	}
	fmt.Printf("\nRecord the phase once reviewed:  planctl save %d --summary \"...\"\n", int(ph))
	return nil
}

func printRunResults(ph phase.Phase, results []runner.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Printf("Phase %d %s — %d sub-task(s):\n", int(ph), ph, len(results))
	for _, res := range results {
		marker := "✓"
		if !res.Success {
			marker = "✗"
		}
		fmt.Printf("  %s %-24s %s\n", marker, res.Subtask, res.Duration.Round(time.Millisecond))
		if !res.Success && res.Error != "" {
			fmt.Printf("      %s\n", res.Error)
		}
	}
}
