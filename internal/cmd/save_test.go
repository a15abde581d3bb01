package cmd

import (
	"testing"
)

func TestParseDecisions(t *testing.T) {
	tests := []struct {
		name          string
		values        []string
		wantCount     int
		wantTitle     string
		wantRationale string
	}{
		{
			name:      "bare title",
			values:    []string{"Postgres for the event store"},
			wantCount: 1,
			wantTitle: "Postgres for the event store",
		},
		{
			name:          "title with rationale",
			values:        []string{"Postgres for the event store :: operational familiarity"},
			wantCount:     1,
			wantTitle:     "Postgres for the event store",
			wantRationale: "operational familiarity",
		},
		{
			name:          "whitespace trimmed",
			values:        []string{"  Go for all services  ::  one toolchain  "},
			wantCount:     1,
			wantTitle:     "Go for all services",
			wantRationale: "one toolchain",
		},
		{
			name:      "empty values skipped",
			values:    []string{"", "   ", "Keep the CLI"},
			wantCount: 1,
			wantTitle: "Keep the CLI",
		},
		{
			name:      "semicolon-delimited list",
			values:    []string{"Postgres; Go for all services; Keep the CLI"},
			wantCount: 3,
			wantTitle: "Postgres",
		},
		{
			name:          "semicolons and rationales combined",
			values:        []string{"Postgres :: familiarity ; Go for all services"},
			wantCount:     2,
			wantTitle:     "Postgres",
			wantRationale: "familiarity",
		},
		{
			name:      "nil input",
			values:    nil,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDecisions(tt.values)

			if len(got) != tt.wantCount {
				t.Fatalf("decision count = %d, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got[0].Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got[0].Title, tt.wantTitle)
			}
			if got[0].Rationale != tt.wantRationale {
				t.Errorf("Rationale = %q, want %q", got[0].Rationale, tt.wantRationale)
			}
		})
	}
}

// TestParseDecisionsOrder tests that decisions keep the order they were
// given in.
func TestParseDecisionsOrder(t *testing.T) {
	got := parseDecisions([]string{"first", "second", "third"})

	if len(got) != 3 {
		t.Fatalf("decision count = %d, want 3", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Title != want {
			t.Errorf("decision %d = %q, want %q", i, got[i].Title, want)
		}
	}
}
