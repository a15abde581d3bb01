package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
	"github.com/planctl/planctl/internal/resume"
)

func testStatus() *resume.Status {
	return &resume.Status{
		Project:  "demo",
		PlanType: "full",
		Phases: []resume.PhaseInfo{
			{Phase: phase.PhaseMarketResearch, Name: "Market Research", Completed: true, Revision: 0, CompletedAt: time.Now()},
			{Phase: phase.PhaseArchitecture, Name: "Architecture", Completed: true, Revision: 2, CompletedAt: time.Now()},
			{Phase: phase.PhaseFeasibility, Name: "Feasibility", Stale: true, StaleReason: "phase 2 Architecture was revised to revision 2"},
			{Phase: phase.PhaseImplementationPlanning, Name: "Implementation Planning"},
		},
	}
}

func TestPhasesModelNavigation(t *testing.T) {
	model := newPhasesModel(testStatus(), nil)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m := updated.(phasesModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = updated.(phasesModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}

	// Bounds hold at the top.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = updated.(phasesModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want to stay at 0", m.cursor)
	}

	// And at the bottom.
	m.cursor = len(m.rows) - 1
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(phasesModel)
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want to stay at last row", m.cursor)
	}
}

func TestPhasesModelViewModes(t *testing.T) {
	model := newPhasesModel(testStatus(), nil)
	if model.viewMode != "list" {
		t.Fatalf("initial viewMode = %q, want list", model.viewMode)
	}

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := updated.(phasesModel)
	if m.viewMode != "detail" {
		t.Errorf("viewMode = %q after enter, want detail", m.viewMode)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(phasesModel)
	if m.viewMode != "list" {
		t.Errorf("viewMode = %q after esc, want list", m.viewMode)
	}
}

func TestPhasesModelQuit(t *testing.T) {
	model := newPhasesModel(testStatus(), nil)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command on q")
	}
}

func TestPhasesModelListView(t *testing.T) {
	model := newPhasesModel(testStatus(), nil)

	view := model.View()
	for _, want := range []string{
		"demo — full plan",
		"2 of 4 phases complete",
		"Market Research",
		"done (rev 2)",
		"stale",
		"pending",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}
}

func TestPhasesModelDetailView(t *testing.T) {
	model := newPhasesModel(testStatus(), nil)
	model.cursor = 2
	model.viewMode = "detail"

	view := model.View()
	for _, want := range []string{
		"Phase 3 of 4",
		"3 — Feasibility",
		"was revised to revision 2",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}
}

func TestNewPhasesModelLoadsCheckpointDetail(t *testing.T) {
	dir := t.TempDir()
	plan, err := planfile.Init(dir, "demo", phase.PlanTypeFull)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	mgr := checkpoint.NewManager(planfile.NewPaths(dir), plan)

	decisions := []checkpoint.Decision{
		{Title: "Target SMB segment", Rationale: "largest underserved market"},
	}
	if _, err := mgr.Save(phase.PhaseMarketResearch, decisions, "Interviewed 12 prospects"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	st, err := resume.Compute(mgr, plan)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	model := newPhasesModel(st, mgr)
	row := model.rows[0]
	if row.summary != "Interviewed 12 prospects" {
		t.Errorf("row.summary = %q", row.summary)
	}
	if len(row.decisions) != 1 || !strings.Contains(row.decisions[0], "Target SMB segment") {
		t.Errorf("row.decisions = %v", row.decisions)
	}

	model.viewMode = "detail"
	view := model.View()
	if !strings.Contains(view, "Interviewed 12 prospects") {
		t.Errorf("detail view missing summary:\n%s", view)
	}
	if !strings.Contains(view, "largest underserved market") {
		t.Errorf("detail view missing decision rationale:\n%s", view)
	}
}
