package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
)

var (
	initProject string
	initType    string
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Start a new planning run",
	Long: `Start a new planning run in a directory.

Writes plan.yaml, creates one output directory per phase, and prepares the
.state directory that will hold checkpoints. The directory defaults to the
current one.

Examples:
  # Full six-phase plan for a product
  planctl init --project lunarbase

  # Technical subset only (architecture through review)
  planctl init --project lunarbase --type tech

  # Initialize somewhere else
  planctl init plans/lunarbase --project lunarbase`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProject, "project", "", "project name (required)")
	initCmd.Flags().StringVar(&initType, "type", "full", "plan type (full, tech)")
	_ = initCmd.MarkFlagRequired("project")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	// init never uses plan discovery: running it inside an existing plan
	// must target the named directory, not the enclosing plan.
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	} else if flagged, err := cmd.Flags().GetString("dir"); err == nil && flagged != "" {
		dir = flagged
	}

	planType, err := phase.ParsePlanType(initType)
	if err != nil {
		return err
	}

	paths := planfile.NewPaths(dir)
	var run *planfile.PlanRun
	err = withPlanLock(paths, func() error {
		var initErr error
		run, initErr = planfile.Init(dir, initProject, planType)
		return initErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Initialized %s plan for %q in %s\n", run.Type, run.Project, dir)
	fmt.Printf("  Run ID: %s\n", run.ID)
	fmt.Println()
	fmt.Println("Phases:")
	for _, ph := range planType.Sequence() {
		fmt.Printf("  [%d] %-24s phases/%s\n", int(ph), ph.String(), ph.Dir())
	}
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Optionally add sub-task commands to plan.yaml")
	fmt.Printf("  2. Work through phase %d and record it:\n", int(planType.First()))
	fmt.Printf("     $ planctl save %d --summary \"...\"\n", int(planType.First()))
	return nil
}
