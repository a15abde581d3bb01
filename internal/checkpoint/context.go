package checkpoint

import (
	"fmt"
	"strings"

	"github.com/planctl/planctl/internal/phase"
)

// Context renders a markdown briefing of the run so far: progress, the
// decisions of every completed phase, and any stale phases. It is what
// `planctl context` prints so a planning session can be picked up after an
// interruption without rereading every output document.
func (m *Manager) Context() (string, error) {
	planType, err := m.plan.PlanType()
	if err != nil {
		return "", err
	}
	checkpoints, err := m.List()
	if err != nil {
		return "", err
	}
	stale, err := m.StalePhases()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s — planning context\n\n", m.plan.Project)
	fmt.Fprintf(&b, "Run `%s`, %s plan, started %s.\n\n", m.plan.ID, planType, m.plan.Created.Format("2006-01-02"))

	last, ok := m.LastCompleted()
	if !ok {
		b.WriteString("No phases completed yet.\n")
	} else {
		next, more := planType.Next(last)
		fmt.Fprintf(&b, "Progress: %d of %d phases complete (%.0f%%). Last completed: %s.\n",
			planType.Position(last), planType.Total(), planType.Percent(last), phaseLabel(last))
		if more {
			fmt.Fprintf(&b, "Next up: %s.\n", phaseLabel(next))
		} else {
			b.WriteString("All phases are complete.\n")
		}
	}

	for _, cp := range checkpoints {
		fmt.Fprintf(&b, "\n## %s (revision %d)\n\n", phaseLabel(cp.Phase), cp.Revision)
		fmt.Fprintf(&b, "Completed %s.\n", cp.CompletedAt.Format("2006-01-02 15:04 MST"))
		if cp.Summary != "" {
			fmt.Fprintf(&b, "\n%s\n", cp.Summary)
		}
		if len(cp.Decisions) > 0 {
			b.WriteString("\nDecisions:\n\n")
			for i, d := range cp.Decisions {
				if d.Rationale != "" {
					fmt.Fprintf(&b, "%d. **%s** — %s\n", i+1, d.Title, d.Rationale)
				} else {
					fmt.Fprintf(&b, "%d. **%s**\n", i+1, d.Title)
				}
			}
		}
	}

	if len(stale) > 0 {
		b.WriteString("\n## Stale phases\n\n")
		for _, marker := range stale {
			fmt.Fprintf(&b, "- %s — %s\n", phaseLabel(marker.Phase), marker.Reason)
		}
	}

	return b.String(), nil
}

func phaseLabel(ph phase.Phase) string {
	return fmt.Sprintf("%02d %s", int(ph), ph.String())
}
