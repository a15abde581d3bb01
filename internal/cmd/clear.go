package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/tui"
	"github.com/planctl/planctl/internal/ux"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all checkpoint state",
	Long: `Delete the plan's checkpoint state: checkpoints, revision records,
backups, stale markers, and the run pointer.

The plan document and the phase output directories are left untouched; the
next command sees a fresh run. This is also the escape hatch for a
corrupted state directory.

Examples:
  planctl clear
  planctl clear --force`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "skip the confirmation prompt")

	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	paths := planfile.NewPaths(cmdCtx.Dir)
	if err := ux.ValidateRequiredFile(paths.PlanFile(), "Plan file", "planctl init --project <name>"); err != nil {
		return err
	}

	// A broken plan.yaml must not stop clear; removing state is how a
	// wrecked directory gets back to a usable one. Only Clear is called on
	// the manager below, and Clear never reads the plan.
	plan, loadErr := planfile.Load(cmdCtx.Dir)
	what := cmdCtx.Dir
	if loadErr == nil {
		what = fmt.Sprintf("%q", plan.Project)
	}
	mgr := checkpoint.NewManager(paths, plan)

	if !clearForce {
		if !cmdCtx.CanPrompt() {
			return ux.NewErrorWithSuggestion(
				fmt.Errorf("clearing checkpoint state needs confirmation"),
				"Re-run with --force to clear without prompting",
			)
		}
		confirmed, err := tui.PromptForConfirmation(
			fmt.Sprintf("Delete all checkpoint state for %s?", what), false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Nothing cleared.")
			return nil
		}
	}

	if err := withPlanLock(paths, mgr.Clear); err != nil {
		return err
	}

	fmt.Printf("✓ Cleared checkpoint state in %s\n", paths.StateDir())
	fmt.Println("  plan.yaml and the phase outputs were left in place.")
	return nil
}
