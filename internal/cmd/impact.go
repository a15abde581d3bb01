package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/phase"
)

var impactCmd = &cobra.Command{
	Use:   "impact <phase>",
	Short: "Preview the cost of revising a phase",
	Long: `Show which phases depend on the given one and the rework a
revision would trigger.

The numbers come from the static phase graph and its per-phase estimates;
nothing is read from the checkpoint store, so impact answers the same for
a finished run and an empty one.

Examples:
  planctl impact 1
  planctl impact 2 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runImpact,
}

func init() {
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ph, err := phase.Parse(args[0])
	if err != nil {
		return err
	}

	plan, _, err := cmdCtx.LoadPlan()
	if err != nil {
		return err
	}
	planType, err := plan.PlanType()
	if err != nil {
		return err
	}
	if !planType.Contains(ph) {
		return errors.NewPhaseNotInPlanError(int(ph), planType.String())
	}

	imp := phase.ComputeImpact(planType, ph)

	if cmdCtx.StructuredOutput() {
		f, err := cmdCtx.Formatter()
		if err != nil {
			return err
		}
		return f.Format(imp)
	}

	fmt.Printf("Revising phase %d %s:\n", int(ph), ph)
	printImpact(imp)
	if len(imp.Dependents) == 0 {
		return nil
	}
	if imp.Recommendation == phase.RecommendAuto {
		fmt.Println("\nA refine would re-execute the dependents without asking.")
	} else {
		fmt.Println("\nA refine would ask before re-executing the dependents.")
	}
	return nil
}
