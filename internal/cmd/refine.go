package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/progress"
	"github.com/planctl/planctl/internal/revision"
	"github.com/planctl/planctl/internal/runner"
	"github.com/planctl/planctl/internal/tui"
	"github.com/planctl/planctl/internal/ux"
)

var (
	refineFeedback  string
	refineCascade   string
	refineSummary   string
	refineDecisions []string
)

var refineCmd = &cobra.Command{
	Use:   "refine <phase>",
	Short: "Revise a completed phase with feedback",
	Long: `Revise an already completed phase: back up its outputs, re-execute
it, decide what happens to the phases built on top of it, and checkpoint
the result as the next revision.

Every step is persisted before the next one starts, so an interrupted
refine picks up where it stopped when re-run for the same phase. A failed
re-execution restores the backed-up outputs and keeps the previous
checkpoint; the recorded feedback survives for the next attempt.

Cascade modes:
  auto    re-execute every affected dependent phase in order
  manual  mark dependents stale for you to redo by hand
  none    mark dependents stale and move on
  ask     decide interactively (the default)

Examples:
  planctl refine 2 --feedback "Architecture must support on-prem deploys"
  planctl refine 2 --feedback "..." --cascade auto
  planctl refine 1 --feedback "Refocus on SMB" --cascade none --summary "SMB-first positioning"`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVar(&refineFeedback, "feedback", "", "what should change and why (required to start a revision)")
	refineCmd.Flags().StringVar(&refineCascade, "cascade", "ask", "cascade mode (auto, manual, none, ask)")
	refineCmd.Flags().StringVar(&refineSummary, "summary", "", "replacement summary for the revised checkpoint")
	refineCmd.Flags().StringArrayVar(&refineDecisions, "decision", nil, "replacement decision(s), \"title :: rationale\" separated by \";\" (repeatable)")

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
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
	wf := revision.NewWorkflow(paths, plan, mgr, runner.New(paths, plan, cmdCtx.Config))

	return withPlanLock(paths, func() error {
		return driveRevision(cmd.Context(), cmdCtx, wf, ph)
	})
}

// driveRevision walks a revision record through its remaining states. Each
// workflow step persists the record before returning, so a crash or failure
// leaves a trail the next invocation resumes from.
func driveRevision(ctx context.Context, cmdCtx *CommandContext, wf *revision.Workflow, ph phase.Phase) error {
	rec, err := wf.InProgress(ph)
	if err != nil {
		return err
	}
	if rec != nil {
		fmt.Printf("Resuming revision %d of phase %d %s (state: %s)\n", rec.Revision, int(ph), ph, rec.State)
		fmt.Printf("  Feedback: %s\n", rec.Feedback)
	} else {
		if refineFeedback == "" {
			return ux.NewErrorWithSuggestion(
				fmt.Errorf("starting a revision needs --feedback"),
				"Say what should change, e.g. --feedback \"Support on-prem deploys\"",
			)
		}
		rec, err = wf.Begin(ph, refineFeedback)
		if err != nil {
			return err
		}
		fmt.Printf("Revision %d of phase %d %s\n", rec.Revision, int(ph), ph)
		printImpact(rec.Impact)
	}

	var cascadeErr error
	for rec.State != revision.StateCheckpointed {
		switch rec.State {
		case revision.StateIdentified:
			if err := wf.Backup(rec); err != nil {
				return err
			}
			fmt.Printf("✓ Backed up previous outputs to %s\n", rec.BackupDir)

		case revision.StateBackedUp:
			ind := progress.New(
				fmt.Sprintf("Re-executing phase %d %s", int(ph), ph),
				progress.Config{Animate: tui.IsInteractive() && !cmdCtx.NoColor},
			)
			ind.Start()
			err := wf.Reexecute(ctx, rec)
			ind.Stop()
			if err != nil {
				return err
			}
			fmt.Printf("✓ Re-executed phase %d %s\n", int(ph), ph)

		case revision.StateReexecuted:
			choice, err := resolveCascade(cmdCtx, rec)
			if err != nil {
				return err
			}
			if err := wf.DecideCascade(rec, choice); err != nil {
				return err
			}
			fmt.Printf("✓ Cascade decision: %s\n", choice)

		case revision.StateCascadeDecided:
			if err := wf.ApplyCascade(ctx, rec); err != nil {
				if rec.State != revision.StateCascadeApplied {
					return err
				}
				// The record advanced despite the failure; finish
				// checkpointing the revised phase and report it after.
				cascadeErr = err
			}
			printCascadeOutcome(rec)

		case revision.StateCascadeApplied:
			cp, err := wf.Checkpoint(rec, parseDecisions(refineDecisions), refineSummary)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Checkpointed phase %d %s at revision %d\n", int(ph), ph, cp.Revision)

		default:
			return errors.New(errors.ErrCodeRevisionState,
				fmt.Sprintf("revision record of phase %d is in unexpected state %q", int(ph), rec.State))
		}
	}
	return cascadeErr
}

// resolveCascade turns the --cascade flag into a concrete choice, asking the
// operator when the flag says ask and a terminal is attached. Without a
// terminal, an auto recommendation is followed; anything heavier needs an
// explicit flag.
func resolveCascade(cmdCtx *CommandContext, rec *revision.Record) (revision.CascadeChoice, error) {
	if refineCascade != "ask" {
		return revision.ParseCascade(refineCascade)
	}

	deps := rec.Impact.Dependents
	if len(deps) == 0 {
		// Nothing downstream; every choice is a no-op.
		return revision.CascadeNone, nil
	}

	if !cmdCtx.CanPrompt() {
		if rec.Impact.Recommendation == phase.RecommendAuto {
			fmt.Printf("Non-interactive: following the auto recommendation for %d dependent phase(s)\n", len(deps))
			return revision.CascadeAuto, nil
		}
		return "", ux.NewErrorWithSuggestion(
			fmt.Errorf("revising phase %d affects %d phases (~%s of rework); a cascade choice is needed",
				int(rec.Phase), len(deps), rec.Impact.Rework),
			"Pass --cascade auto, manual, or none",
		)
	}

	choices := []tui.Choice{
		{
			Label: fmt.Sprintf("auto: re-execute the %d dependent phase(s) now (~%s)", len(deps), rec.Impact.Rework),
			Value: string(revision.CascadeAuto),
		},
		{
			Label: "manual: mark them stale, I will redo them myself",
			Value: string(revision.CascadeManual),
		},
		{
			Label: "none: mark them stale and move on",
			Value: string(revision.CascadeNone),
		},
	}
	picked, err := tui.PromptForChoice(
		fmt.Sprintf("How should the %d affected phase(s) be handled? (recommended: %s)",
			len(deps), rec.Impact.Recommendation),
		choices,
	)
	if err != nil {
		return "", err
	}
	return revision.ParseCascade(picked)
}

func printImpact(imp phase.Impact) {
	if len(imp.Dependents) == 0 {
		fmt.Println("  No downstream phases are affected.")
		return
	}
	fmt.Println("  Affected downstream phases:")
	for _, dep := range imp.Dependents {
		fmt.Printf("    [%d] %-24s ~%s\n", int(dep), dep.String(), dep.Duration())
	}
	fmt.Printf("  Estimated rework: %s (recommendation: %s)\n", imp.Rework, imp.Recommendation)
}

func printCascadeOutcome(rec *revision.Record) {
	for _, dep := range rec.Reexecuted {
		fmt.Printf("✓ Re-executed dependent phase %d %s\n", int(dep), dep)
	}
	for _, dep := range rec.Stale {
		fmt.Printf("⚠ Phase %d %s marked stale\n", int(dep), dep)
	}
}
