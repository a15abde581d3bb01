package cmd

import (
	"os"
	"testing"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/log"
	"github.com/planctl/planctl/internal/phase"
)

func TestBuildStoreDump(t *testing.T) {
	cmdCtx := &CommandContext{Logger: log.Configure("error", "text")}

	t.Run("full store", func(t *testing.T) {
		plan, paths, mgr := newTestPlan(t, phase.PlanTypeFull)

		decisions := []checkpoint.Decision{{Title: "Postgres", Rationale: "familiarity"}}
		if _, err := mgr.Save(phase.PhaseMarketResearch, decisions, "interviews done"); err != nil {
			t.Fatalf("Save(1) error = %v", err)
		}
		if _, err := mgr.Save(phase.PhaseArchitecture, nil, ""); err != nil {
			t.Fatalf("Save(2) error = %v", err)
		}
		err := mgr.MarkStale(checkpoint.StaleMarker{
			Phase:  phase.PhaseFeasibility,
			Source: phase.PhaseMarketResearch,
			Reason: "phase 1 revised",
		})
		if err != nil {
			t.Fatalf("MarkStale() error = %v", err)
		}

		rec := `{"phase":1,"revision":1,"feedback":"refocus","state":"checkpointed",` +
			`"impact":{"phase":1,"dependents":null,"rework":0,"recommendation":"auto"},` +
			`"started_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`
		if err := os.WriteFile(paths.RevisionPath(phase.PhaseMarketResearch, 1), []byte(rec), 0644); err != nil {
			t.Fatalf("writing revision record: %v", err)
		}

		dump, err := buildStoreDump(cmdCtx, mgr, plan, paths)
		if err != nil {
			t.Fatalf("buildStoreDump() error = %v", err)
		}

		if dump.Plan != plan {
			t.Error("Plan not carried into the dump")
		}
		if dump.Run == nil || dump.Run.LastCompleted != phase.PhaseArchitecture {
			t.Errorf("Run = %+v, want pointer at phase 2", dump.Run)
		}
		if len(dump.Checkpoints) != 2 {
			t.Errorf("Checkpoints = %d, want 2", len(dump.Checkpoints))
		}
		if len(dump.Stale) != 1 || dump.Stale[0].Phase != phase.PhaseFeasibility {
			t.Errorf("Stale = %+v, want one marker on phase 3", dump.Stale)
		}
		if len(dump.Revisions) != 1 || dump.Revisions[0].Feedback != "refocus" {
			t.Errorf("Revisions = %+v, want the written record", dump.Revisions)
		}
	})

	t.Run("unreadable run pointer is dropped", func(t *testing.T) {
		plan, paths, mgr := newTestPlan(t, phase.PlanTypeFull)
		if _, err := mgr.Save(phase.PhaseMarketResearch, nil, ""); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := os.WriteFile(paths.RunStatePath(), []byte("{truncated"), 0644); err != nil {
			t.Fatalf("corrupting run.json: %v", err)
		}

		dump, err := buildStoreDump(cmdCtx, mgr, plan, paths)
		if err != nil {
			t.Fatalf("buildStoreDump() error = %v", err)
		}

		if dump.Run != nil {
			t.Errorf("Run = %+v, want nil for an unreadable pointer", dump.Run)
		}
		if len(dump.Checkpoints) != 1 {
			t.Errorf("Checkpoints = %d, want 1", len(dump.Checkpoints))
		}
	})
}
