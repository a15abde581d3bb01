package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/resume"
	"github.com/planctl/planctl/internal/ux"
)

var listRoot string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans under a directory",
	Long: `List the plan directories found at a root and one level below it,
with the progress of each.

The root defaults to PLANCTL_ROOT, falling back to the working directory.
Directories with an unreadable plan.yaml are skipped.

Examples:
  planctl list
  planctl list --root ~/plans
  planctl list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listRoot, "root", "", "directory to search (default: PLANCTL_ROOT or the working directory)")

	rootCmd.AddCommand(listCmd)
}

// PlanSummary is one row of `planctl list`.
type PlanSummary struct {
	Dir      string  `json:"dir" yaml:"dir"`
	Project  string  `json:"project" yaml:"project"`
	PlanType string  `json:"plan_type" yaml:"plan_type"`
	Done     int     `json:"done" yaml:"done"`
	Total    int     `json:"total" yaml:"total"`
	Percent  float64 `json:"percent" yaml:"percent"`
	Stale    int     `json:"stale" yaml:"stale"`
}

func runList(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	root := listRoot
	if root == "" {
		root = cmdCtx.Config.Root
	}

	plans, err := resume.Discover(root)
	if err != nil {
		return ux.FormatError(err, "searching for plans")
	}
	if len(plans) == 0 {
		fmt.Printf("No plans found under %s\n", root)
		fmt.Println("Run 'planctl init --project <name>' to start one.")
		return nil
	}

	rows := make([]PlanSummary, 0, len(plans))
	for _, dp := range plans {
		rows = append(rows, summarizePlan(dp))
	}

	if cmdCtx.StructuredOutput() {
		f, err := cmdCtx.Formatter()
		if err != nil {
			return err
		}
		return f.Format(rows)
	}

	fmt.Printf("Plans under %s:\n\n", root)
	for _, row := range rows {
		marker := "○"
		if row.Total > 0 && row.Done == row.Total {
			marker = "✓"
		}
		fmt.Printf("  %s %-24s %-20s %-5s %d/%d phases (%.0f%%)",
			marker, row.Dir, row.Project, row.PlanType, row.Done, row.Total, row.Percent)
		if row.Stale > 0 {
			fmt.Printf("  ⚠ %d stale", row.Stale)
		}
		fmt.Println()
	}
	return nil
}

func summarizePlan(dp resume.DiscoveredPlan) PlanSummary {
	row := PlanSummary{
		Dir:      dp.Dir,
		Project:  dp.Plan.Project,
		PlanType: dp.Plan.Type,
	}

	mgr := checkpoint.NewManager(planfile.NewPaths(dp.Dir), dp.Plan)
	st, err := resume.Compute(mgr, dp.Plan)
	if err != nil {
		return row
	}

	row.Total = len(st.Phases)
	row.Percent = st.Percent
	for _, pi := range st.Phases {
		if pi.Completed {
			row.Done++
		}
		if pi.Stale {
			row.Stale++
		}
	}
	return row
}
