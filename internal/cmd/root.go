package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Checkpointed product planning runs",
	Long: `planctl drives a product planning run through its phases and
checkpoints each one, so an interrupted run resumes exactly where it left
off instead of starting over.

All state lives inside the plan directory itself: plan.yaml describes the
run and a .state/ directory holds checkpoints, revision records, and
backups. Completed phases can be revised with recorded feedback; planctl
resolves which downstream phases the change invalidates and either re-runs
them or marks them stale.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx so in-flight sub-task
// executions stop when the process receives a signal.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "C", "", "plan directory (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "never prompt; fail where input would be needed")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
}
