package phase

import (
	"testing"
	"time"
)

func TestComputeImpact(t *testing.T) {
	tests := []struct {
		name           string
		planType       PlanType
		phase          Phase
		wantDeps       []Phase
		wantRework     time.Duration
		wantRecommends CascadeRecommendation
	}{
		{
			name:           "architecture fans out wide",
			planType:       PlanTypeFull,
			phase:          PhaseArchitecture,
			wantDeps:       []Phase{PhaseFeasibility, PhaseImplementationPlanning, PhaseReview},
			wantRework:     8*time.Minute + 10*time.Minute + 5*time.Minute,
			wantRecommends: RecommendAsk,
		},
		{
			name:           "go-to-market touches only review",
			planType:       PlanTypeFull,
			phase:          PhaseGoToMarket,
			wantDeps:       []Phase{PhaseReview},
			wantRework:     5 * time.Minute,
			wantRecommends: RecommendAuto,
		},
		{
			name:           "review has no dependents",
			planType:       PlanTypeFull,
			phase:          PhaseReview,
			wantDeps:       nil,
			wantRework:     0,
			wantRecommends: RecommendAuto,
		},
		{
			name:           "feasibility stays under the ask threshold",
			planType:       PlanTypeFull,
			phase:          PhaseFeasibility,
			wantDeps:       []Phase{PhaseImplementationPlanning, PhaseReview},
			wantRework:     10*time.Minute + 5*time.Minute,
			wantRecommends: RecommendAuto,
		},
		{
			name:           "tech plan filters dependents to its sequence",
			planType:       PlanTypeTech,
			phase:          PhaseArchitecture,
			wantDeps:       []Phase{PhaseFeasibility, PhaseImplementationPlanning, PhaseReview},
			wantRework:     8*time.Minute + 10*time.Minute + 5*time.Minute,
			wantRecommends: RecommendAsk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := ComputeImpact(tt.planType, tt.phase)

			if impact.Phase != tt.phase {
				t.Errorf("Impact.Phase = %v, want %v", impact.Phase, tt.phase)
			}

			if len(impact.Dependents) != len(tt.wantDeps) {
				t.Fatalf("Impact.Dependents = %v, want %v", impact.Dependents, tt.wantDeps)
			}
			for i := range impact.Dependents {
				if impact.Dependents[i] != tt.wantDeps[i] {
					t.Errorf("Impact.Dependents[%d] = %v, want %v", i, impact.Dependents[i], tt.wantDeps[i])
				}
			}

			if impact.Rework != tt.wantRework {
				t.Errorf("Impact.Rework = %v, want %v", impact.Rework, tt.wantRework)
			}

			if impact.Recommendation != tt.wantRecommends {
				t.Errorf("Impact.Recommendation = %v, want %v", impact.Recommendation, tt.wantRecommends)
			}
		})
	}
}

func TestComputeImpactIsStateless(t *testing.T) {
	// Two identical calls must agree; the resolver reads only static tables.
	a := ComputeImpact(PlanTypeFull, PhaseArchitecture)
	b := ComputeImpact(PlanTypeFull, PhaseArchitecture)

	if a.Rework != b.Rework || a.Recommendation != b.Recommendation || len(a.Dependents) != len(b.Dependents) {
		t.Error("ComputeImpact should be deterministic")
	}
}

func TestAutoThresholdBoundary(t *testing.T) {
	// Exactly two dependents recommends auto; three recommends ask.
	feas := ComputeImpact(PlanTypeFull, PhaseFeasibility)
	if len(feas.Dependents) != 2 || feas.Recommendation != RecommendAuto {
		t.Errorf("two dependents should recommend auto, got %d/%v", len(feas.Dependents), feas.Recommendation)
	}

	arch := ComputeImpact(PlanTypeFull, PhaseArchitecture)
	if len(arch.Dependents) != 3 || arch.Recommendation != RecommendAsk {
		t.Errorf("three dependents should recommend ask, got %d/%v", len(arch.Dependents), arch.Recommendation)
	}
}
