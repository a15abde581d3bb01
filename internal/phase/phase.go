package phase

import (
	"fmt"
	"strconv"
	"time"

	"github.com/planctl/planctl/internal/errors"
)

// Phase represents one stage of the planning pipeline.
// Numbering is canonical (1..6) regardless of plan type.
type Phase int

const (
	PhaseMarketResearch Phase = iota + 1
	PhaseArchitecture
	PhaseFeasibility
	PhaseImplementationPlanning
	PhaseGoToMarket
	PhaseReview
)

// Count is the total number of canonical phases.
const Count = 6

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case PhaseMarketResearch:
		return "Market Research"
	case PhaseArchitecture:
		return "Architecture"
	case PhaseFeasibility:
		return "Feasibility"
	case PhaseImplementationPlanning:
		return "Implementation Planning"
	case PhaseGoToMarket:
		return "Go-to-Market"
	case PhaseReview:
		return "Review"
	default:
		return "Unknown"
	}
}

// Slug returns the file-system name for the phase
func (p Phase) Slug() string {
	switch p {
	case PhaseMarketResearch:
		return "market-research"
	case PhaseArchitecture:
		return "architecture"
	case PhaseFeasibility:
		return "feasibility"
	case PhaseImplementationPlanning:
		return "implementation-planning"
	case PhaseGoToMarket:
		return "go-to-market"
	case PhaseReview:
		return "review"
	default:
		return "unknown"
	}
}

// Dir returns the phase output directory name, e.g. "03-feasibility"
func (p Phase) Dir() string {
	return fmt.Sprintf("%02d-%s", int(p), p.Slug())
}

// Valid reports whether p is a canonical phase number
func (p Phase) Valid() bool {
	return p >= PhaseMarketResearch && p <= PhaseReview
}

// Duration returns the fixed re-run time estimate for the phase.
// These are static planning figures, not measurements.
func (p Phase) Duration() time.Duration {
	switch p {
	case PhaseMarketResearch:
		return 12 * time.Minute
	case PhaseArchitecture:
		return 10 * time.Minute
	case PhaseFeasibility:
		return 8 * time.Minute
	case PhaseImplementationPlanning:
		return 10 * time.Minute
	case PhaseGoToMarket:
		return 8 * time.Minute
	case PhaseReview:
		return 5 * time.Minute
	default:
		return 0
	}
}

// Parse converts a phase number string into a Phase
func Parse(s string) (Phase, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodePhaseOutOfRange, fmt.Sprintf("invalid phase: %q", s)).
			WithSuggestion("Phase numbers run from 1 to 6").
			WithSuggestion("Run 'planctl phases' to list all phases")
	}
	p := Phase(n)
	if !p.Valid() {
		return 0, errors.NewPhaseOutOfRangeError(n)
	}
	return p, nil
}

// All returns every canonical phase in order
func All() []Phase {
	return []Phase{
		PhaseMarketResearch,
		PhaseArchitecture,
		PhaseFeasibility,
		PhaseImplementationPlanning,
		PhaseGoToMarket,
		PhaseReview,
	}
}

// dependents holds the direct downstream consumers of each phase's output.
// Go-to-market builds on market research alone; feasibility reads both
// research and architecture; review depends on everything before it.
var dependents = map[Phase][]Phase{
	PhaseMarketResearch:         {PhaseArchitecture, PhaseFeasibility, PhaseGoToMarket, PhaseReview},
	PhaseArchitecture:           {PhaseFeasibility, PhaseImplementationPlanning, PhaseReview},
	PhaseFeasibility:            {PhaseImplementationPlanning, PhaseReview},
	PhaseImplementationPlanning: {PhaseReview},
	PhaseGoToMarket:             {PhaseReview},
	PhaseReview:                 {},
}

// Dependents returns the phases whose content consumes p's output,
// in canonical order. The returned slice is a copy.
func Dependents(p Phase) []Phase {
	deps := dependents[p]
	out := make([]Phase, len(deps))
	copy(out, deps)
	return out
}

// Prereqs returns the phases whose output p consumes, in canonical order.
func Prereqs(p Phase) []Phase {
	var out []Phase
	for _, candidate := range All() {
		for _, dep := range dependents[candidate] {
			if dep == p {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}
