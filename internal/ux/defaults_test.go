package ux

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolvePlanDir(t *testing.T) {
	// Run from an empty directory so upward discovery finds nothing and
	// the explicit/configured precedence is what gets exercised.
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	defer os.Chdir(originalWd)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("changing directory: %v", err)
	}

	tests := []struct {
		name       string
		explicit   string
		configured string
		want       string
	}{
		{
			name:       "explicit flag wins",
			explicit:   "/plans/alpha",
			configured: "/plans/beta",
			want:       "/plans/alpha",
		},
		{
			name:       "configured root when no flag",
			explicit:   "",
			configured: "/plans/beta",
			want:       "/plans/beta",
		},
		{
			name:       "working directory as last resort",
			explicit:   "",
			configured: "",
			want:       ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePlanDir(tt.explicit, tt.configured)
			if got != tt.want {
				t.Errorf("ResolvePlanDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePlanDirDiscoveryBeatsConfigured(t *testing.T) {
	planDir := t.TempDir()
	writePlanFile(t, planDir)

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	defer os.Chdir(originalWd)

	if err := os.Chdir(planDir); err != nil {
		t.Fatalf("changing directory: %v", err)
	}

	got := ResolvePlanDir("", "/plans/elsewhere")
	if got == "/plans/elsewhere" {
		t.Error("ResolvePlanDir() returned the configured root instead of the enclosing plan directory")
	}
	if _, err := os.Stat(filepath.Join(got, "plan.yaml")); err != nil {
		t.Errorf("ResolvePlanDir() = %q, want a directory holding plan.yaml", got)
	}
}

func TestResolvePlanDirDiscovers(t *testing.T) {
	planDir := t.TempDir()
	writePlanFile(t, planDir)

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	defer os.Chdir(originalWd)

	if err := os.Chdir(planDir); err != nil {
		t.Fatalf("changing directory: %v", err)
	}

	got := ResolvePlanDir("", "")
	if _, err := os.Stat(filepath.Join(got, "plan.yaml")); err != nil {
		t.Errorf("ResolvePlanDir() = %q, want a directory holding plan.yaml", got)
	}
}

func TestValidateRequiredFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(existing, []byte("id: x\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	if err := ValidateRequiredFile(existing, "Plan file", "planctl init"); err != nil {
		t.Errorf("ValidateRequiredFile() = %v, want nil for existing file", err)
	}

	err := ValidateRequiredFile(filepath.Join(dir, "missing.yaml"), "Plan file", "planctl init")
	if err == nil {
		t.Fatal("ValidateRequiredFile() = nil, want error for missing file")
	}
	if !strings.Contains(err.Error(), "planctl init") {
		t.Errorf("error %q does not name the creation command", err)
	}
}

func TestSuggestNextSteps(t *testing.T) {
	dir := t.TempDir()

	// Nothing exists yet.
	if got := SuggestNextSteps(dir); !strings.Contains(got, "planctl init") {
		t.Errorf("SuggestNextSteps() = %q, want init suggestion", got)
	}

	// Plan exists, no checkpoints.
	if err := os.WriteFile(filepath.Join(dir, "plan.yaml"), []byte("id: x\n"), 0644); err != nil {
		t.Fatalf("writing plan.yaml: %v", err)
	}
	if got := SuggestNextSteps(dir); !strings.Contains(got, "planctl save") {
		t.Errorf("SuggestNextSteps() = %q, want save suggestion", got)
	}

	// Checkpoints exist.
	cpDir := filepath.Join(dir, ".state", "checkpoints")
	if err := os.MkdirAll(cpDir, 0755); err != nil {
		t.Fatalf("creating checkpoints dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cpDir, "phase-1.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("writing checkpoint: %v", err)
	}
	if got := SuggestNextSteps(dir); !strings.Contains(got, "planctl resume") {
		t.Errorf("SuggestNextSteps() = %q, want resume suggestion", got)
	}
}
