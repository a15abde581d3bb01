package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/config"
	"github.com/planctl/planctl/internal/lockfile"
	"github.com/planctl/planctl/internal/log"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/tui"
	"github.com/planctl/planctl/internal/ux"
)

// CommandContext holds the resolved flag and environment configuration a
// command runs with. Commands build one at the top of their RunE instead of
// reading globals, which keeps them testable in isolation:
//
//	func runStatus(cmd *cobra.Command, args []string) error {
//		cmdCtx, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		// Use cmdCtx.Dir, cmdCtx.Format, ...
//	}
type CommandContext struct {
	// Dir is the plan directory, resolved from --dir, the enclosing plan
	// directory, and PLANCTL_ROOT in that order.
	Dir string

	// Output control
	Format  string
	NoColor bool

	// NonInteractive suppresses every prompt.
	NonInteractive bool

	Config *config.Config
	Logger *log.Logger
}

// NewCommandContext reads the persistent flags and the PLANCTL_* environment
// and configures the process logger. Flags win over environment values.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}
	nonInteractive, err := cmd.Flags().GetBool("non-interactive")
	if err != nil {
		return nil, err
	}
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if logFormat == "" {
		logFormat = cfg.LogFormat
	}
	logger := log.Configure(logLevel, logFormat)

	return &CommandContext{
		Dir:            ux.ResolvePlanDir(dir, cfg.Root),
		Format:         format,
		NoColor:        noColor || cfg.ColorDisabled(),
		NonInteractive: nonInteractive || cfg.NonInteractive,
		Config:         cfg,
		Logger:         logger,
	}, nil
}

// CanPrompt reports whether the command may put questions to the user.
func (c *CommandContext) CanPrompt() bool {
	return !c.NonInteractive && tui.ShouldPrompt()
}

// Formatter builds the output formatter for the resolved --format value.
func (c *CommandContext) Formatter() (ux.Formatter, error) {
	return ux.NewFormatter(c.Format, &ux.FormatterOptions{
		Writer:  os.Stdout,
		NoColor: c.NoColor,
	})
}

// StructuredOutput reports whether --format asked for a machine-readable
// rendering instead of the human text layout.
func (c *CommandContext) StructuredOutput() bool {
	return c.Format == "json" || c.Format == "yaml"
}

// LoadPlan loads and validates the plan document of the resolved directory.
func (c *CommandContext) LoadPlan() (*planfile.PlanRun, planfile.Paths, error) {
	paths := planfile.NewPaths(c.Dir)
	plan, err := planfile.Load(c.Dir)
	if err != nil {
		return nil, paths, err
	}
	return plan, paths, nil
}

// withPlanLock runs fn while holding the plan's advisory lock, so two
// planctl invocations never mutate the same .state directory at once.
func withPlanLock(paths planfile.Paths, fn func() error) error {
	lock, err := lockfile.Acquire(paths.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}
