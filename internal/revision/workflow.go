package revision

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/log"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
)

// PhaseRunner re-executes one phase, regenerating its output directory.
type PhaseRunner interface {
	RunPhase(ctx context.Context, ph phase.Phase) error
}

// Workflow drives a revision through its states. Each step persists the
// record before returning, so a crash leaves an inspectable trail.
type Workflow struct {
	paths  planfile.Paths
	plan   *planfile.PlanRun
	mgr    *checkpoint.Manager
	runner PhaseRunner
	logger *log.Logger
	now    func() time.Time
}

// NewWorkflow creates a workflow over one plan directory. The caller is
// expected to hold the plan's advisory lock for the duration.
func NewWorkflow(paths planfile.Paths, plan *planfile.PlanRun, mgr *checkpoint.Manager, runner PhaseRunner) *Workflow {
	return &Workflow{
		paths:  paths,
		plan:   plan,
		mgr:    mgr,
		runner: runner,
		logger: log.DefaultLogger().WithPlan(paths.Root()),
		now:    time.Now,
	}
}

// Begin identifies a revision: the target must already be checkpointed, the
// downstream impact is resolved, and a record is written in state
// identified. Beginning again before an earlier revision of the same phase
// is checkpointed restarts it and overwrites its record.
func (w *Workflow) Begin(target phase.Phase, feedback string) (*Record, error) {
	if !target.Valid() {
		return nil, errors.NewPhaseOutOfRangeError(int(target))
	}
	planType, err := w.plan.PlanType()
	if err != nil {
		return nil, err
	}
	if !planType.Contains(target) {
		return nil, errors.NewPhaseNotInPlanError(int(target), planType.String())
	}

	cp, err := w.mgr.Load(target)
	if err != nil {
		if isCode(err, errors.ErrCodeCheckpointMissing) {
			last, _ := w.mgr.LastCompleted()
			return nil, errors.NewPhaseNotCompletedError(int(target), int(last))
		}
		return nil, err
	}

	now := w.now().UTC()
	rec := &Record{
		Phase:     target,
		Revision:  cp.Revision + 1,
		Feedback:  feedback,
		State:     StateIdentified,
		Impact:    phase.ComputeImpact(planType, target),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := saveRecord(w.paths, rec); err != nil {
		return nil, err
	}
	w.logger.WithPhase(int(target)).Info("revision identified",
		"revision", rec.Revision, "dependents", len(rec.Impact.Dependents), "rework", rec.Impact.Rework.String())
	return rec, nil
}

// Backup snapshots the target's output directory into the revision's backup
// directory and verifies the copy is byte-identical before moving on.
func (w *Workflow) Backup(rec *Record) error {
	if err := w.expect(rec, StateIdentified); err != nil {
		return err
	}

	outDir := w.paths.PhaseOutputDir(rec.Phase)
	backupDir := w.paths.BackupDir(rec.Phase, rec.Revision)
	if err := os.RemoveAll(backupDir); err != nil {
		return errors.Wrap(errors.ErrCodeRevisionBackupFailed, fmt.Sprintf("reset %s", backupDir), err)
	}
	if err := copyTree(outDir, backupDir); err != nil {
		return errors.Wrap(errors.ErrCodeRevisionBackupFailed, fmt.Sprintf("copy outputs of phase %d", int(rec.Phase)), err)
	}
	hash, err := verifyIdentical(outDir, backupDir)
	if err != nil {
		return err
	}

	rec.BackupDir = backupDir
	rec.BackupHash = hash
	return w.advance(rec, StateBackedUp)
}

// Reexecute runs the target phase again. On failure the pre-revision
// outputs are restored from the backup, the failure is recorded, and the
// record stays in backed_up so the step can be retried.
func (w *Workflow) Reexecute(ctx context.Context, rec *Record) error {
	if err := w.expect(rec, StateBackedUp); err != nil {
		return err
	}

	if err := w.runner.RunPhase(ctx, rec.Phase); err != nil {
		outDir := w.paths.PhaseOutputDir(rec.Phase)
		if restoreErr := restoreTree(rec.BackupDir, outDir); restoreErr != nil {
			return errors.Wrap(errors.ErrCodeRevisionBackupFailed,
				fmt.Sprintf("re-execution of phase %d failed (%v) and restoring the backup also failed", int(rec.Phase), err),
				restoreErr)
		}
		rec.Error = err.Error()
		rec.UpdatedAt = w.now().UTC()
		if saveErr := saveRecord(w.paths, rec); saveErr != nil {
			return saveErr
		}
		w.logger.WithPhase(int(rec.Phase)).Warn("re-execution failed, outputs restored from backup")
		return errors.NewRevisionRerunFailedError(int(rec.Phase), err)
	}

	rec.Error = ""
	return w.advance(rec, StateReexecuted)
}

// DecideCascade records the operator's cascade choice. The impact on the
// record carries the resolver's recommendation; this call stores what was
// actually chosen.
func (w *Workflow) DecideCascade(rec *Record, choice CascadeChoice) error {
	if err := w.expect(rec, StateReexecuted); err != nil {
		return err
	}
	if _, err := ParseCascade(string(choice)); err != nil {
		return err
	}
	rec.Cascade = choice
	return w.advance(rec, StateCascadeDecided)
}

// ApplyCascade executes the recorded choice against the completed
// dependents of the target. Under auto each dependent is re-executed and
// re-checkpointed in phase order; when one fails, it and every remaining
// dependent are marked stale and a cascade-incomplete error is returned,
// but the record still advances so the target itself can be checkpointed.
// Under manual or none all completed dependents are marked stale.
func (w *Workflow) ApplyCascade(ctx context.Context, rec *Record) error {
	if err := w.expect(rec, StateCascadeDecided); err != nil {
		return err
	}

	var deps []phase.Phase
	for _, dep := range rec.Impact.Dependents {
		if w.mgr.Exists(dep) {
			deps = append(deps, dep)
		}
	}

	var cascadeErr error
	switch rec.Cascade {
	case CascadeAuto:
		rec.Reexecuted = nil
		rec.Stale = nil
		for i, dep := range deps {
			if err := w.rerunDependent(ctx, dep); err != nil {
				rec.Error = err.Error()
				rec.Stale = deps[i:]
				for _, stale := range deps[i:] {
					w.markStale(stale, rec)
				}
				cascadeErr = errors.Wrap(errors.ErrCodeCascadeIncomplete,
					fmt.Sprintf("cascade stopped at phase %d; remaining dependents are marked stale", int(dep)), err).
					WithSuggestion(fmt.Sprintf("Re-run the stale phases with 'planctl run' or revise them once phase %d settles", int(rec.Phase)))
				break
			}
			rec.Reexecuted = append(rec.Reexecuted, dep)
		}
	case CascadeManual, CascadeNone:
		rec.Stale = deps
		for _, dep := range deps {
			w.markStale(dep, rec)
		}
	}

	if err := w.advance(rec, StateCascadeApplied); err != nil {
		return err
	}
	return cascadeErr
}

// Checkpoint saves the revised phase, completing the workflow. With no
// decisions or summary given, the previous checkpoint's are carried over;
// the revision changed the outputs, not the record of what was decided.
func (w *Workflow) Checkpoint(rec *Record, decisions []checkpoint.Decision, summary string) (*checkpoint.PhaseCheckpoint, error) {
	if err := w.expect(rec, StateCascadeApplied); err != nil {
		return nil, err
	}

	if decisions == nil && summary == "" {
		if prev, err := w.mgr.Load(rec.Phase); err == nil {
			decisions = prev.Decisions
			summary = prev.Summary
		}
	}
	cp, err := w.mgr.Save(rec.Phase, decisions, summary)
	if err != nil {
		return nil, err
	}
	if cp.Revision != rec.Revision {
		w.logger.WithPhase(int(rec.Phase)).Warn("checkpoint revision diverged from revision record",
			"checkpoint", cp.Revision, "record", rec.Revision)
	}

	if err := w.advance(rec, StateCheckpointed); err != nil {
		return nil, err
	}
	return cp, nil
}

// InProgress returns the newest record of a phase that has not reached
// checkpointed, or nil when the phase has no revision underway.
func (w *Workflow) InProgress(ph phase.Phase) (*Record, error) {
	rec, err := Latest(w.paths, ph)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.State == StateCheckpointed {
		return nil, nil
	}
	return rec, nil
}

func (w *Workflow) rerunDependent(ctx context.Context, dep phase.Phase) error {
	if err := w.runner.RunPhase(ctx, dep); err != nil {
		return err
	}
	prev, err := w.mgr.Load(dep)
	if err != nil {
		return err
	}
	if _, err := w.mgr.Save(dep, prev.Decisions, prev.Summary); err != nil {
		return err
	}
	w.logger.WithPhase(int(dep)).Info("dependent re-executed after upstream revision")
	return nil
}

func (w *Workflow) markStale(dep phase.Phase, rec *Record) {
	marker := checkpoint.StaleMarker{
		Phase:    dep,
		Source:   rec.Phase,
		Revision: rec.Revision,
		Reason:   fmt.Sprintf("phase %d %s was revised to revision %d", int(rec.Phase), rec.Phase, rec.Revision),
	}
	if err := w.mgr.MarkStale(marker); err != nil {
		w.logger.WithPhase(int(dep)).WithError(err).Warn("failed to write stale marker")
	}
}

func (w *Workflow) expect(rec *Record, want State) error {
	if rec.State != want {
		return errors.New(errors.ErrCodeRevisionState,
			fmt.Sprintf("revision %d of phase %d is in state %q, expected %q", rec.Revision, int(rec.Phase), rec.State, want))
	}
	return nil
}

func (w *Workflow) advance(rec *Record, to State) error {
	rec.State = to
	rec.UpdatedAt = w.now().UTC()
	if err := saveRecord(w.paths, rec); err != nil {
		return err
	}
	w.logger.WithPhase(int(rec.Phase)).Debug("revision state advanced", "state", string(to), "revision", rec.Revision)
	return nil
}

func isCode(err error, code errors.ErrorCode) bool {
	var perr *errors.PlanctlError
	return stderrors.As(err, &perr) && perr.Code == code
}
