package cmd

import (
	"strings"
	"testing"

	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/revision"
)

// recordWithImpact builds a revision record for a phase with its static
// impact already resolved, the shape resolveCascade sees after re-execution.
func recordWithImpact(ph phase.Phase) *revision.Record {
	return &revision.Record{
		Phase:    ph,
		Revision: 1,
		State:    revision.StateReexecuted,
		Impact:   phase.ComputeImpact(phase.PlanTypeFull, ph),
	}
}

func TestResolveCascadeExplicitFlag(t *testing.T) {
	restore := refineCascade
	defer func() { refineCascade = restore }()

	tests := []struct {
		flag    string
		want    revision.CascadeChoice
		wantErr bool
	}{
		{flag: "auto", want: revision.CascadeAuto},
		{flag: "manual", want: revision.CascadeManual},
		{flag: "none", want: revision.CascadeNone},
		{flag: "sideways", wantErr: true},
	}

	cmdCtx := &CommandContext{NonInteractive: true}
	rec := recordWithImpact(phase.PhaseArchitecture)

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			refineCascade = tt.flag

			got, err := resolveCascade(cmdCtx, rec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveCascade() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("resolveCascade() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCascadeAsk(t *testing.T) {
	restore := refineCascade
	defer func() { refineCascade = restore }()
	refineCascade = "ask"

	cmdCtx := &CommandContext{NonInteractive: true}

	t.Run("no dependents needs no choice", func(t *testing.T) {
		got, err := resolveCascade(cmdCtx, recordWithImpact(phase.PhaseReview))
		if err != nil {
			t.Fatalf("resolveCascade() error = %v", err)
		}
		if got != revision.CascadeNone {
			t.Errorf("resolveCascade() = %q, want none", got)
		}
	})

	t.Run("non-interactive follows auto recommendation", func(t *testing.T) {
		rec := recordWithImpact(phase.PhaseImplementationPlanning)
		if rec.Impact.Recommendation != phase.RecommendAuto {
			t.Fatalf("Recommendation = %q, want auto for one dependent", rec.Impact.Recommendation)
		}

		got, err := resolveCascade(cmdCtx, rec)
		if err != nil {
			t.Fatalf("resolveCascade() error = %v", err)
		}
		if got != revision.CascadeAuto {
			t.Errorf("resolveCascade() = %q, want auto", got)
		}
	})

	t.Run("non-interactive refuses heavy cascades", func(t *testing.T) {
		rec := recordWithImpact(phase.PhaseArchitecture)
		if rec.Impact.Recommendation != phase.RecommendAsk {
			t.Fatalf("Recommendation = %q, want ask for three dependents", rec.Impact.Recommendation)
		}

		_, err := resolveCascade(cmdCtx, rec)
		if err == nil {
			t.Fatal("resolveCascade() error = nil, want a cascade choice error")
		}
		if !strings.Contains(err.Error(), "--cascade") {
			t.Errorf("error = %q, want it to point at the --cascade flag", err)
		}
	})
}
