package cmd

import (
	"testing"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/resume"
)

func TestSummarizePlan(t *testing.T) {
	t.Run("fresh plan", func(t *testing.T) {
		plan, paths, _ := newTestPlan(t, phase.PlanTypeFull)

		row := summarizePlan(resume.DiscoveredPlan{Dir: paths.Root(), Plan: plan})

		if row.Project != "testproj" || row.PlanType != "full" {
			t.Errorf("row = %+v, want testproj/full", row)
		}
		if row.Total != 6 || row.Done != 0 || row.Stale != 0 {
			t.Errorf("row = %+v, want 0 of 6 done", row)
		}
		if row.Percent != 0 {
			t.Errorf("Percent = %.1f, want 0", row.Percent)
		}
	})

	t.Run("tech plan in progress", func(t *testing.T) {
		plan, paths, mgr := newTestPlan(t, phase.PlanTypeTech)
		if _, err := mgr.Save(phase.PhaseArchitecture, nil, ""); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		err := mgr.MarkStale(checkpoint.StaleMarker{
			Phase:  phase.PhaseFeasibility,
			Source: phase.PhaseArchitecture,
			Reason: "phase 2 revised",
		})
		if err != nil {
			t.Fatalf("MarkStale() error = %v", err)
		}

		row := summarizePlan(resume.DiscoveredPlan{Dir: paths.Root(), Plan: plan})

		if row.Total != 4 || row.Done != 1 {
			t.Errorf("row = %+v, want 1 of 4 done", row)
		}
		if row.Stale != 1 {
			t.Errorf("Stale = %d, want 1", row.Stale)
		}
		if row.Percent != 25 {
			t.Errorf("Percent = %.1f, want 25", row.Percent)
		}
	})

	t.Run("unreadable plan type degrades to metadata", func(t *testing.T) {
		plan := &planfile.PlanRun{ID: "r", Project: "broken", Type: "bogus"}

		row := summarizePlan(resume.DiscoveredPlan{Dir: t.TempDir(), Plan: plan})

		if row.Project != "broken" || row.PlanType != "bogus" {
			t.Errorf("row = %+v, want the plan metadata kept", row)
		}
		if row.Total != 0 || row.Done != 0 {
			t.Errorf("row = %+v, want no phase counts", row)
		}
	})
}
