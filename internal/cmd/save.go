package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/phase"
)

var (
	saveSummary   string
	saveDecisions []string
)

var saveCmd = &cobra.Command{
	Use:   "save <phase>",
	Short: "Checkpoint a completed phase",
	Long: `Record a phase as completed: fingerprint its outputs, store the
decisions made during it, and advance the run pointer.

The first save of a phase is revision 0; saving the same phase again
increments the revision. Decisions keep the order they were given in.

Examples:
  planctl save 1 --summary "Interviewed 12 prospects"

  planctl save 2 --summary "Event-driven core" \
    --decision "Postgres for the event store :: operational familiarity" \
    --decision "Go for all services"`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveSummary, "summary", "", "one-line summary of the phase outcome")
	saveCmd.Flags().StringArrayVar(&saveDecisions, "decision", nil, "decision(s) to record, \"title :: rationale\" separated by \";\" (repeatable)")

	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
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

	var cp *checkpoint.PhaseCheckpoint
	err = withPlanLock(paths, func() error {
		var saveErr error
		cp, saveErr = mgr.Save(ph, parseDecisions(saveDecisions), saveSummary)
		return saveErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Checkpointed phase %d %s (revision %d)\n", int(ph), ph, cp.Revision)
	if len(cp.Decisions) > 0 {
		fmt.Printf("  Recorded %d decision(s)\n", len(cp.Decisions))
	}

	planType, err := plan.PlanType()
	if err != nil {
		return err
	}
	last, _ := mgr.LastCompleted()
	if next, ok := planType.Next(last); ok {
		fmt.Printf("\nNext: phase %d %s\n", int(next), next)
	} else {
		fmt.Println("\nAll phases complete. Run 'planctl context' for the full briefing.")
	}
	return nil
}

// parseDecisions turns --decision values into checkpoint decisions. A value
// carries one or more decisions separated by ";", each either a bare title
// or "title :: rationale".
func parseDecisions(values []string) []checkpoint.Decision {
	var out []checkpoint.Decision
	for _, v := range values {
		for _, item := range strings.Split(v, ";") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			title, rationale, found := strings.Cut(item, "::")
			if !found {
				out = append(out, checkpoint.Decision{Title: item})
				continue
			}
			out = append(out, checkpoint.Decision{
				Title:     strings.TrimSpace(title),
				Rationale: strings.TrimSpace(rationale),
			})
		}
	}
	return out
}
