package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/revision"
	"github.com/planctl/planctl/internal/ux"
)

var loadCmd = &cobra.Command{
	Use:   "load [phase]",
	Short: "Print stored checkpoint state",
	Long: `Print the persisted state of a plan: the run pointer, every
readable checkpoint, stale markers, and revision records.

With a phase number, only that phase's checkpoint is printed. Unreadable
files are skipped rather than failing the whole dump. Intended for
scripting; pair with --format json or --format yaml.

Examples:
  planctl load --format json
  planctl load 2 --format yaml
  planctl load 2 --format json | jq '.decisions[].title'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

// StoreDump is the full persisted state of a plan as one document.
type StoreDump struct {
	Plan        *planfile.PlanRun             `json:"plan" yaml:"plan"`
	Run         *checkpoint.RunState          `json:"run,omitempty" yaml:"run,omitempty"`
	Checkpoints []*checkpoint.PhaseCheckpoint `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty"`
	Stale       []checkpoint.StaleMarker      `json:"stale,omitempty" yaml:"stale,omitempty"`
	Revisions   []*revision.Record            `json:"revisions,omitempty" yaml:"revisions,omitempty"`
}

func runLoad(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	plan, paths, err := cmdCtx.LoadPlan()
	if err != nil {
		return err
	}
	mgr := checkpoint.NewManager(paths, plan)

	if len(args) == 1 {
		ph, err := phase.Parse(args[0])
		if err != nil {
			return err
		}
		cp, err := mgr.Load(ph)
		if err != nil {
			return err
		}
		return printDocument(cmdCtx, cp)
	}

	dump, err := buildStoreDump(cmdCtx, mgr, plan, paths)
	if err != nil {
		return err
	}
	return printDocument(cmdCtx, dump)
}

func buildStoreDump(cmdCtx *CommandContext, mgr *checkpoint.Manager, plan *planfile.PlanRun, paths planfile.Paths) (*StoreDump, error) {
	dump := &StoreDump{Plan: plan}

	rs, err := mgr.RunState()
	if err != nil {
		cmdCtx.Logger.WithPlan(paths.Root()).WithError(err).Warn("run pointer is unreadable, dumping without it")
	} else {
		dump.Run = rs
	}

	dump.Checkpoints, err = mgr.List()
	if err != nil {
		return nil, err
	}
	dump.Stale, err = mgr.StalePhases()
	if err != nil {
		return nil, err
	}

	planType, err := plan.PlanType()
	if err != nil {
		return nil, err
	}
	for _, ph := range planType.Sequence() {
		history, err := revision.History(paths, ph)
		if err != nil {
			return nil, err
		}
		dump.Revisions = append(dump.Revisions, history...)
	}
	return dump, nil
}

// printDocument renders stored state in the requested format. There is no
// terse text layout for raw store documents, so text falls back to YAML.
func printDocument(cmdCtx *CommandContext, data interface{}) error {
	format := cmdCtx.Format
	if format == "" || format == "text" {
		format = "yaml"
	}
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{
		Writer:  os.Stdout,
		NoColor: cmdCtx.NoColor,
	})
	if err != nil {
		return err
	}
	return f.Format(data)
}
