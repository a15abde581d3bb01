// Package resume answers where an interrupted planning run left off: which
// phases are done, which are stale, what comes next, and how far along the
// run is. It is the orientation layer shared by the status, resume, and run
// commands.
package resume

import (
	"time"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
)

// PhaseInfo is the per-phase line of a status report.
type PhaseInfo struct {
	Phase       phase.Phase `json:"phase" yaml:"phase"`
	Name        string      `json:"name" yaml:"name"`
	Completed   bool        `json:"completed" yaml:"completed"`
	Revision    int         `json:"revision" yaml:"revision"`
	CompletedAt time.Time   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Decisions   int         `json:"decisions" yaml:"decisions"`
	Stale       bool        `json:"stale" yaml:"stale"`
	StaleReason string      `json:"stale_reason,omitempty" yaml:"stale_reason,omitempty"`
}

// Status is the resumable state of one plan directory.
type Status struct {
	Project       string      `json:"project" yaml:"project"`
	RunID         string      `json:"run_id" yaml:"run_id"`
	PlanType      string      `json:"plan_type" yaml:"plan_type"`
	LastCompleted phase.Phase `json:"last_completed" yaml:"last_completed"`
	HasProgress   bool        `json:"has_progress" yaml:"has_progress"`
	Next          phase.Phase `json:"next" yaml:"next"`
	Done          bool        `json:"done" yaml:"done"`
	Percent       float64     `json:"percent" yaml:"percent"`
	Phases        []PhaseInfo `json:"phases" yaml:"phases"`

	planType phase.PlanType
}

// Compute derives the status of a plan from its checkpoint store. A corrupt
// store degrades to an earlier position rather than failing; orientation
// must work on a broken state directory.
func Compute(mgr *checkpoint.Manager, plan *planfile.PlanRun) (*Status, error) {
	planType, err := plan.PlanType()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Project:  plan.Project,
		RunID:    plan.ID,
		PlanType: planType.String(),
		planType: planType,
	}

	last, ok := mgr.LastCompleted()
	st.LastCompleted = last
	st.HasProgress = ok
	if ok {
		st.Percent = planType.Percent(last)
		next, more := planType.Next(last)
		st.Next, st.Done = next, !more
	} else {
		st.Next = planType.First()
	}

	for _, ph := range planType.Sequence() {
		info := PhaseInfo{Phase: ph, Name: ph.String(), Revision: -1}
		if cp, err := mgr.Load(ph); err == nil {
			info.Completed = true
			info.Revision = cp.Revision
			info.CompletedAt = cp.CompletedAt
			info.Decisions = len(cp.Decisions)
		}
		if marker, err := mgr.StaleFor(ph); err == nil && marker != nil {
			info.Stale = true
			info.StaleReason = marker.Reason
		}
		st.Phases = append(st.Phases, info)
	}
	return st, nil
}

// ValidateTarget checks an explicitly requested resume phase. Redoing a
// completed phase or starting the next one is allowed; jumping past the
// next phase is not, because its prerequisites have no checkpoints yet.
func (s *Status) ValidateTarget(target phase.Phase) error {
	if !target.Valid() {
		return errors.NewPhaseOutOfRangeError(int(target))
	}
	if !s.planType.Contains(target) {
		return errors.NewPhaseNotInPlanError(int(target), s.PlanType)
	}
	if s.Done {
		return nil
	}
	if s.planType.Position(target) > s.planType.Position(s.Next) {
		return errors.NewPhaseNotCompletedError(int(target), int(s.LastCompleted)).
			WithSuggestion("Resume at the next phase with 'planctl resume'")
	}
	return nil
}
