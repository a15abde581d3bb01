// Package runner executes the configured sub-tasks of a phase, writing
// their outputs into the phase's output directory.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/planctl/planctl/internal/config"
	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/log"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
)

// Result is the outcome of one sub-task.
type Result struct {
	Subtask  string        `json:"subtask" yaml:"subtask"`
	Success  bool          `json:"success" yaml:"success"`
	Output   string        `json:"output,omitempty" yaml:"output,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Runner executes phase sub-tasks with bounded parallelism. Sub-task
// commands run with the phase's output directory as working directory, so
// relative writes land in the right place.
type Runner struct {
	paths       planfile.Paths
	plan        *planfile.PlanRun
	maxParallel int
	taskTimeout time.Duration
	logger      *log.Logger
}

// New creates a runner for one plan.
func New(paths planfile.Paths, plan *planfile.PlanRun, cfg *config.Config) *Runner {
	maxParallel := cfg.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Runner{
		paths:       paths,
		plan:        plan,
		maxParallel: maxParallel,
		taskTimeout: cfg.SubtaskTimeout,
		logger:      log.DefaultLogger().WithPlan(paths.Root()),
	}
}

// RunPhase executes every sub-task of a phase and reports a single error
// summarizing any failures. It satisfies the revision workflow's runner
// interface.
func (r *Runner) RunPhase(ctx context.Context, ph phase.Phase) error {
	_, err := r.Run(ctx, ph)
	return err
}

// Run executes every sub-task of a phase. All sub-tasks run even when some
// fail; a failure in one never stops its siblings. The returned results are
// in sub-task order regardless of completion order.
func (r *Runner) Run(ctx context.Context, ph phase.Phase) ([]Result, error) {
	outDir := r.paths.PhaseOutputDir(ph)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create %s", outDir), err)
	}

	subtasks := r.plan.SubtasksFor(ph)
	if len(subtasks) == 0 {
		r.logger.WithPhase(int(ph)).Debug("phase has no sub-tasks configured")
		return nil, nil
	}

	results := make([]Result, len(subtasks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.maxParallel)

	for i, st := range subtasks {
		wg.Add(1)
		go func(index int, st planfile.Subtask) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[index] = r.runSubtask(ctx, ph, st)
		}(i, st)
	}
	wg.Wait()

	var failed []string
	for _, res := range results {
		if !res.Success {
			failed = append(failed, res.Subtask)
		}
	}
	if len(failed) == 0 {
		r.logger.WithPhase(int(ph)).Info("phase sub-tasks finished", "subtasks", len(results))
		return results, nil
	}

	if ctx.Err() != nil {
		return results, errors.Wrap(errors.ErrCodeSubtaskCanceled,
			fmt.Sprintf("phase %d was interrupted with %d sub-task(s) unfinished", int(ph), len(failed)), ctx.Err())
	}
	return results, errors.New(errors.ErrCodeSubtaskFailed,
		fmt.Sprintf("%d of %d sub-task(s) of phase %d failed: %s", len(failed), len(results), int(ph), strings.Join(failed, ", "))).
		WithSuggestion("Inspect the sub-task output above, fix the commands in plan.yaml, and re-run the phase")
}

func (r *Runner) runSubtask(ctx context.Context, ph phase.Phase, st planfile.Subtask) Result {
	res := Result{Subtask: st.Name}

	taskCtx, cancel := context.WithTimeout(ctx, r.taskTimeout)
	defer cancel()

	cmd := exec.CommandContext(taskCtx, st.Command[0], st.Command[1:]...)
	cmd.Dir = r.paths.PhaseOutputDir(ph)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("PLANCTL_PLAN_DIR=%s", r.paths.Root()),
		fmt.Sprintf("PLANCTL_PHASE=%d", int(ph)),
		fmt.Sprintf("PLANCTL_PHASE_SLUG=%s", ph.Slug()),
		fmt.Sprintf("PLANCTL_OUTPUT_DIR=%s", r.paths.PhaseOutputDir(ph)),
	)

	start := time.Now()
	output, err := cmd.CombinedOutput()
	res.Duration = time.Since(start)
	res.Output = strings.TrimSpace(string(output))

	if err != nil {
		res.Error = err.Error()
		r.logger.WithPhase(int(ph)).Warn("sub-task failed", "subtask", st.Name, "error", res.Error, "duration", res.Duration.String())
		return res
	}
	res.Success = true
	r.logger.WithPhase(int(ph)).Debug("sub-task finished", "subtask", st.Name, "duration", res.Duration.String())
	return res
}
