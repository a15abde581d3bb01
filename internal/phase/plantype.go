package phase

import (
	"fmt"

	"github.com/planctl/planctl/internal/errors"
)

// PlanType selects which canonical phases a plan runs.
type PlanType string

const (
	// PlanTypeFull runs all six phases.
	PlanTypeFull PlanType = "full"
	// PlanTypeTech runs the technical subset: architecture, feasibility,
	// implementation planning, and review. Market research and go-to-market
	// are skipped; canonical numbering is unchanged.
	PlanTypeTech PlanType = "tech"
)

// ParsePlanType validates a plan type string
func ParsePlanType(s string) (PlanType, error) {
	switch PlanType(s) {
	case PlanTypeFull:
		return PlanTypeFull, nil
	case PlanTypeTech:
		return PlanTypeTech, nil
	default:
		return "", errors.New(errors.ErrCodePlanTypeUnknown, fmt.Sprintf("unknown plan type: %q", s)).
			WithSuggestion("Use 'full' for all six phases or 'tech' for the technical subset")
	}
}

// String returns the plan type as its configuration string
func (t PlanType) String() string {
	return string(t)
}

// Valid reports whether t is a known plan type
func (t PlanType) Valid() bool {
	return t == PlanTypeFull || t == PlanTypeTech
}

// Sequence returns the phases this plan type runs, in execution order.
func (t PlanType) Sequence() []Phase {
	switch t {
	case PlanTypeTech:
		return []Phase{PhaseArchitecture, PhaseFeasibility, PhaseImplementationPlanning, PhaseReview}
	default:
		return All()
	}
}

// Contains reports whether the plan type runs the given phase
func (t PlanType) Contains(p Phase) bool {
	for _, candidate := range t.Sequence() {
		if candidate == p {
			return true
		}
	}
	return false
}

// Total returns the number of phases this plan type runs
func (t PlanType) Total() int {
	return len(t.Sequence())
}

// First returns the first phase of the sequence
func (t PlanType) First() Phase {
	return t.Sequence()[0]
}

// Last returns the final phase of the sequence
func (t PlanType) Last() Phase {
	seq := t.Sequence()
	return seq[len(seq)-1]
}

// Position returns the 1-based position of p in the sequence, or 0 when the
// plan type does not run p.
func (t PlanType) Position(p Phase) int {
	for i, candidate := range t.Sequence() {
		if candidate == p {
			return i + 1
		}
	}
	return 0
}

// Next returns the phase that follows last in the sequence. When last is 0
// (nothing completed) it returns the first phase. The second return is false
// once the sequence is exhausted.
func (t PlanType) Next(last Phase) (Phase, bool) {
	seq := t.Sequence()
	if last == 0 {
		return seq[0], true
	}
	for i, candidate := range seq {
		if candidate == last {
			if i+1 < len(seq) {
				return seq[i+1], true
			}
			return 0, false
		}
	}
	// last is outside the sequence; resume from the first phase after it
	// in canonical order.
	for _, candidate := range seq {
		if candidate > last {
			return candidate, true
		}
	}
	return 0, false
}

// Percent returns completion as a fraction of the sequence, given the last
// completed phase. A zero last phase means nothing is done.
func (t PlanType) Percent(last Phase) float64 {
	if last == 0 {
		return 0
	}
	pos := t.Position(last)
	if pos == 0 {
		// Count phases at or before last that the sequence contains.
		for _, candidate := range t.Sequence() {
			if candidate <= last {
				pos++
			}
		}
	}
	return float64(pos) / float64(t.Total()) * 100
}
