package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePlanDir picks the plan directory a command should operate on.
// An explicit --dir flag wins, then the nearest enclosing plan directory,
// then the configured root (PLANCTL_ROOT), then the working directory.
func ResolvePlanDir(explicit, configured string) string {
	if explicit != "" {
		return explicit
	}
	if dir, ok := DiscoverPlanDir(); ok {
		return dir
	}
	if configured != "" {
		return configured
	}
	return "."
}

// ValidateRequiredFile checks that a required file exists and points the
// user at the command that creates it when it does not.
func ValidateRequiredFile(path string, fileType string, creationCommand string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\nRun '%s' to create it", fileType, path, creationCommand)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}

// SuggestNextSteps looks at what exists under the plan directory and
// returns the command the user most likely wants next.
func SuggestNextSteps(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, "plan.yaml")); os.IsNotExist(err) {
		return "Run 'planctl init --project <name>' to start a plan"
	}

	checkpoints, err := os.ReadDir(filepath.Join(dir, ".state", "checkpoints"))
	if err != nil || len(checkpoints) == 0 {
		return "Record your first phase with 'planctl save 1 --summary ...'"
	}

	return "Run 'planctl resume' to pick up where you left off"
}
