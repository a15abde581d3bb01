package phase

import (
	"testing"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseMarketResearch, "Market Research"},
		{PhaseArchitecture, "Architecture"},
		{PhaseFeasibility, "Feasibility"},
		{PhaseImplementationPlanning, "Implementation Planning"},
		{PhaseGoToMarket, "Go-to-Market"},
		{PhaseReview, "Review"},
		{Phase(0), "Unknown"},
		{Phase(7), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
			}
		})
	}
}

func TestPhaseDir(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseMarketResearch, "01-market-research"},
		{PhaseArchitecture, "02-architecture"},
		{PhaseFeasibility, "03-feasibility"},
		{PhaseImplementationPlanning, "04-implementation-planning"},
		{PhaseGoToMarket, "05-go-to-market"},
		{PhaseReview, "06-review"},
	}

	for _, tt := range tests {
		if got := tt.phase.Dir(); got != tt.want {
			t.Errorf("Phase(%d).Dir() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestPhaseValid(t *testing.T) {
	for _, p := range All() {
		if !p.Valid() {
			t.Errorf("expected phase %d to be valid", int(p))
		}
	}

	for _, n := range []int{-1, 0, 7, 99} {
		if Phase(n).Valid() {
			t.Errorf("expected phase %d to be invalid", n)
		}
	}
}

func TestPhaseDuration(t *testing.T) {
	for _, p := range All() {
		if p.Duration() <= 0 {
			t.Errorf("phase %d should have a positive duration estimate", int(p))
		}
	}

	if Phase(0).Duration() != 0 {
		t.Error("invalid phase should have zero duration")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Phase
		wantErr bool
	}{
		{"1", PhaseMarketResearch, false},
		{"4", PhaseImplementationPlanning, false},
		{"6", PhaseReview, false},
		{"0", 0, true},
		{"7", 0, true},
		{"-2", 0, true},
		{"two", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDependents(t *testing.T) {
	tests := []struct {
		phase Phase
		want  []Phase
	}{
		{PhaseMarketResearch, []Phase{PhaseArchitecture, PhaseFeasibility, PhaseGoToMarket, PhaseReview}},
		{PhaseArchitecture, []Phase{PhaseFeasibility, PhaseImplementationPlanning, PhaseReview}},
		{PhaseFeasibility, []Phase{PhaseImplementationPlanning, PhaseReview}},
		{PhaseImplementationPlanning, []Phase{PhaseReview}},
		{PhaseGoToMarket, []Phase{PhaseReview}},
		{PhaseReview, []Phase{}},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			got := Dependents(tt.phase)
			if len(got) != len(tt.want) {
				t.Fatalf("Dependents(%v) = %v, want %v", tt.phase, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Dependents(%v)[%d] = %v, want %v", tt.phase, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDependentsReturnsCopy(t *testing.T) {
	first := Dependents(PhaseArchitecture)
	first[0] = PhaseReview

	second := Dependents(PhaseArchitecture)
	if second[0] != PhaseFeasibility {
		t.Error("Dependents should return a fresh copy, not the shared table")
	}
}

func TestPrereqs(t *testing.T) {
	tests := []struct {
		phase Phase
		want  []Phase
	}{
		{PhaseMarketResearch, nil},
		{PhaseArchitecture, []Phase{PhaseMarketResearch}},
		{PhaseFeasibility, []Phase{PhaseMarketResearch, PhaseArchitecture}},
		{PhaseImplementationPlanning, []Phase{PhaseArchitecture, PhaseFeasibility}},
		{PhaseGoToMarket, []Phase{PhaseMarketResearch}},
		{PhaseReview, []Phase{PhaseMarketResearch, PhaseArchitecture, PhaseFeasibility, PhaseImplementationPlanning, PhaseGoToMarket}},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			got := Prereqs(tt.phase)
			if len(got) != len(tt.want) {
				t.Fatalf("Prereqs(%v) = %v, want %v", tt.phase, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Prereqs(%v)[%d] = %v, want %v", tt.phase, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReviewDependsOnAllPriorPhases(t *testing.T) {
	prereqs := Prereqs(PhaseReview)
	if len(prereqs) != Count-1 {
		t.Fatalf("review should depend on all %d prior phases, got %d", Count-1, len(prereqs))
	}
}
