package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planctl/planctl/internal/checkpoint"
	"github.com/planctl/planctl/internal/resume"
)

// phaseRow is one phase of the plan as the browser displays it.
type phaseRow struct {
	number      int
	name        string
	completed   bool
	revision    int
	completedAt time.Time
	summary     string
	decisions   []string
	stale       bool
	staleReason string
}

// phasesModel is the BubbleTea model for the phase browser
type phasesModel struct {
	project  string
	planType string
	rows     []phaseRow
	cursor   int
	viewMode string // "list" or "detail"
	keys     phasesKeyMap
	width    int
	height   int
}

// phasesKeyMap defines the keyboard shortcuts of the browser
type phasesKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Open key.Binding
	Back key.Binding
	Quit key.Binding
}

var phasesKeys = phasesKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "right", "l"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "left", "h"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2).
			MarginTop(1)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// newPhasesModel builds the browser model from a computed status. The
// checkpoint manager fills in summaries and decision titles for the
// detail view; rows degrade to the bare status line when a checkpoint
// cannot be read.
func newPhasesModel(st *resume.Status, mgr *checkpoint.Manager) phasesModel {
	rows := make([]phaseRow, 0, len(st.Phases))
	for _, info := range st.Phases {
		row := phaseRow{
			number:      int(info.Phase),
			name:        info.Name,
			completed:   info.Completed,
			revision:    info.Revision,
			completedAt: info.CompletedAt,
			stale:       info.Stale,
			staleReason: info.StaleReason,
		}
		if info.Completed && mgr != nil {
			if cp, err := mgr.Load(info.Phase); err == nil {
				row.summary = cp.Summary
				for _, d := range cp.Decisions {
					text := d.Title
					if d.Rationale != "" {
						text = fmt.Sprintf("%s (%s)", d.Title, d.Rationale)
					}
					row.decisions = append(row.decisions, text)
				}
			}
		}
		rows = append(rows, row)
	}

	return phasesModel{
		project:  st.Project,
		planType: st.PlanType,
		rows:     rows,
		viewMode: "list",
		keys:     phasesKeys,
	}
}

// Init initializes the model
func (m phasesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m phasesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.viewMode == "list" && m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.viewMode == "list" && m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.Open):
			if m.viewMode == "list" {
				m.viewMode = "detail"
			}
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if m.viewMode == "detail" {
				m.viewMode = "list"
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the current state
func (m phasesModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("📋 %s — %s plan", m.project, m.planType)))
	b.WriteString("\n\n")

	completed := 0
	for _, row := range m.rows {
		if row.completed {
			completed++
		}
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d of %d phases complete", completed, len(m.rows))))
	b.WriteString("\n\n")

	if m.viewMode == "list" {
		for i, row := range m.rows {
			style := itemStyle
			cursor := "  "
			if i == m.cursor {
				style = selectedItemStyle
				cursor = "→ "
			}

			line := fmt.Sprintf("%s[%d] %-25s %s", cursor, row.number, row.name, m.statusLabel(row))
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	} else {
		row := m.rows[m.cursor]
		b.WriteString(headerStyle.Render(fmt.Sprintf("Phase %d of %d", m.cursor+1, len(m.rows))))
		b.WriteString("\n\n")

		details := []struct {
			key   string
			value string
		}{
			{"Phase", fmt.Sprintf("%d — %s", row.number, row.name)},
			{"Status", m.statusLabel(row)},
		}
		if row.completed {
			details = append(details,
				struct{ key, value string }{"Revision", fmt.Sprintf("%d", row.revision)},
				struct{ key, value string }{"Completed", row.completedAt.Format("2006-01-02 15:04")},
			)
		}
		if row.summary != "" {
			details = append(details, struct{ key, value string }{"Summary", row.summary})
		}

		for _, detail := range details {
			b.WriteString("  ")
			b.WriteString(detailKeyStyle.Render(fmt.Sprintf("%-10s:", detail.key)))
			b.WriteString(" ")
			b.WriteString(detailValueStyle.Render(detail.value))
			b.WriteString("\n")
		}

		if len(row.decisions) > 0 {
			b.WriteString("\n  ")
			b.WriteString(detailKeyStyle.Render("Decisions:"))
			b.WriteString("\n")
			for _, d := range row.decisions {
				b.WriteString(fmt.Sprintf("    • %s\n", d))
			}
		}

		if row.stale {
			b.WriteString("\n  ")
			b.WriteString(staleStyle.Render("Stale:"))
			b.WriteString(" ")
			b.WriteString(detailValueStyle.Render(row.staleReason))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	if m.viewMode == "list" {
		b.WriteString(helpStyle.Render("↑/↓: navigate | enter: view details | q: quit"))
	} else {
		b.WriteString(helpStyle.Render("esc: back to list | q: quit"))
	}

	return b.String()
}

func (m phasesModel) statusLabel(row phaseRow) string {
	switch {
	case row.stale:
		return staleStyle.Render("stale")
	case row.completed && row.revision > 0:
		return doneStyle.Render(fmt.Sprintf("done (rev %d)", row.revision))
	case row.completed:
		return doneStyle.Render("done")
	default:
		return "pending"
	}
}

// RunPhaseBrowser launches the interactive phase browser for a plan.
func RunPhaseBrowser(st *resume.Status, mgr *checkpoint.Manager) error {
	if len(st.Phases) == 0 {
		return fmt.Errorf("plan has no phases to browse")
	}

	model := newPhasesModel(st, mgr)

	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running phase browser: %w", err)
	}
	return nil
}
