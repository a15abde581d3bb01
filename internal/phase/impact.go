package phase

import (
	"time"
)

// CascadeRecommendation is the resolver's advice on how to propagate a
// revision to dependent phases. It is advice only; the caller decides.
type CascadeRecommendation string

const (
	// RecommendAuto suggests re-running all dependents without asking.
	RecommendAuto CascadeRecommendation = "auto"
	// RecommendAsk suggests confirming with the operator first.
	RecommendAsk CascadeRecommendation = "ask"
)

// autoThreshold is the largest dependent set re-run without confirmation.
const autoThreshold = 2

// Impact describes the downstream cost of revising a phase.
type Impact struct {
	Phase          Phase                 `json:"phase" yaml:"phase"`
	Dependents     []Phase               `json:"dependents" yaml:"dependents"`
	Rework         time.Duration         `json:"rework" yaml:"rework"`
	Recommendation CascadeRecommendation `json:"recommendation" yaml:"recommendation"`
}

// ComputeImpact resolves the dependents of p within the given plan type,
// sums their fixed re-run estimates, and recommends a cascade mode. It is a
// pure table lookup; no stored state is read.
func ComputeImpact(t PlanType, p Phase) Impact {
	var deps []Phase
	for _, dep := range Dependents(p) {
		if t.Contains(dep) {
			deps = append(deps, dep)
		}
	}

	var rework time.Duration
	for _, dep := range deps {
		rework += dep.Duration()
	}

	rec := RecommendAuto
	if len(deps) > autoThreshold {
		rec = RecommendAsk
	}

	return Impact{
		Phase:          p,
		Dependents:     deps,
		Rework:         rework,
		Recommendation: rec,
	}
}
