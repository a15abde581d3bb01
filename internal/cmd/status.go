package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/fingerprint"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/resume"
	"github.com/planctl/planctl/internal/ux"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show planning run progress",
	Long: `Show the progress of the planning run: completed phases with their
revisions, stale phases, and what to do next.

A corrupted checkpoint store never fails status; unreadable files are
reported as warnings and the phases behind them count as not completed.

Examples:
  planctl status
  planctl status --format json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// StatusReport is the machine-readable shape of `planctl status`.
type StatusReport struct {
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Dir       string         `json:"dir" yaml:"dir"`
	Status    *resume.Status `json:"status" yaml:"status"`
	Warnings  []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	NextSteps []string       `json:"next_steps,omitempty" yaml:"next_steps,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	plan, paths, err := cmdCtx.LoadPlan()
	if err != nil {
		return err
	}
	mgr := checkpoint.NewManager(paths, plan)

	report, err := buildStatusReport(mgr, plan, paths)
	if err != nil {
		return ux.FormatError(err, "building status report")
	}

	if cmdCtx.StructuredOutput() {
		f, err := cmdCtx.Formatter()
		if err != nil {
			return err
		}
		return f.Format(report)
	}

	printStatusReport(report)
	return nil
}

func buildStatusReport(mgr *checkpoint.Manager, plan *planfile.PlanRun, paths planfile.Paths) (*StatusReport, error) {
	st, err := resume.Compute(mgr, plan)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		Timestamp: time.Now().UTC(),
		Dir:       paths.Root(),
		Status:    st,
	}

	for _, pi := range st.Phases {
		if pi.Stale {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("phase %d %s is stale: %s", int(pi.Phase), pi.Name, pi.StaleReason))
		}
	}

	rs, err := mgr.RunState()
	switch {
	case err != nil:
		report.Warnings = append(report.Warnings,
			"run pointer is unreadable; progress is derived from the checkpoint files alone")
	case rs != nil && rs.LastCompleted > st.LastCompleted:
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"run pointer says phase %d completed but the checkpoint chain ends at phase %d; trusting the checkpoints",
			int(rs.LastCompleted), int(st.LastCompleted)))
	}

	report.Warnings = append(report.Warnings, driftWarnings(mgr, paths, st)...)
	report.NextSteps = nextSteps(st)
	return report, nil
}

// driftWarnings flags completed phases whose output directories no longer
// match the fingerprint taken at checkpoint time. Drift is advisory; nothing
// blocks on it.
func driftWarnings(mgr *checkpoint.Manager, paths planfile.Paths, st *resume.Status) []string {
	var warnings []string
	for _, pi := range st.Phases {
		if !pi.Completed {
			continue
		}
		cp, err := mgr.Load(pi.Phase)
		if err != nil || cp.TreeHash == "" {
			continue
		}
		current, err := fingerprint.BuildManifest(paths.PhaseOutputDir(pi.Phase))
		if err != nil {
			continue
		}
		if current.TreeHash() != cp.TreeHash {
			warnings = append(warnings, fmt.Sprintf(
				"outputs of phase %d %s changed since revision %d was checkpointed (%d file(s) differ)",
				int(pi.Phase), pi.Name, cp.Revision, len(current.Diff(cp.Outputs))))
		}
	}
	return warnings
}

func nextSteps(st *resume.Status) []string {
	var steps []string
	staleCount := 0
	for _, pi := range st.Phases {
		if pi.Stale {
			staleCount++
		}
	}

	switch {
	case st.Done:
		steps = append(steps, "All phases are complete; 'planctl context' prints the full briefing")
		steps = append(steps, "Revise a phase with 'planctl refine <phase> --feedback ...' if something changed")
	case !st.HasProgress:
		steps = append(steps, fmt.Sprintf("Start with phase %d %s: 'planctl run %d', then 'planctl save %d --summary ...'",
			int(st.Next), st.Next, int(st.Next), int(st.Next)))
	default:
		steps = append(steps, fmt.Sprintf("Continue with phase %d %s: 'planctl run %d', then 'planctl save %d --summary ...'",
			int(st.Next), st.Next, int(st.Next), int(st.Next)))
	}
	if staleCount > 0 {
		steps = append(steps, fmt.Sprintf("Re-run the %d stale phase(s) and save them again to clear the markers", staleCount))
	}
	return steps
}

func printStatusReport(r *StatusReport) {
	st := r.Status

	done := 0
	for _, pi := range st.Phases {
		if pi.Completed {
			done++
		}
	}

	fmt.Printf("Plan:     %s (%s plan)\n", st.Project, st.PlanType)
	fmt.Printf("Run:      %s\n", st.RunID)
	fmt.Printf("Progress: %d of %d phases (%.0f%%)\n", done, len(st.Phases), st.Percent)
	fmt.Println()

	fmt.Println("Phases:")
	for _, pi := range st.Phases {
		fmt.Printf("  %s\n", formatPhaseLine(pi))
	}

	if len(r.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, w := range r.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	}

	if len(r.NextSteps) > 0 {
		fmt.Println()
		fmt.Println("Next steps:")
		for i, s := range r.NextSteps {
			fmt.Printf("  %d. %s\n", i+1, s)
		}
	}
}

func formatPhaseLine(pi resume.PhaseInfo) string {
	marker := "○"
	detail := "pending"
	switch {
	case pi.Stale:
		marker = "⚠"
		detail = "stale: " + pi.StaleReason
	case pi.Completed:
		marker = "✓"
		detail = fmt.Sprintf("rev %d  %s", pi.Revision, formatTime(pi.CompletedAt))
		if pi.Decisions > 0 {
			detail += fmt.Sprintf("  %d decision(s)", pi.Decisions)
		}
	}
	return fmt.Sprintf("%s [%d] %-24s %s", marker, int(pi.Phase), pi.Name, detail)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
