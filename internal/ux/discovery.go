package ux

import (
	"os"
	"path/filepath"
)

// DiscoverPlanDir walks from the working directory upward looking for
// the nearest directory containing plan.yaml. This lets commands run
// from anywhere inside a plan, including the phases/ output tree. The
// walk stops at the repository root (a directory holding .git) or the
// filesystem root.
func DiscoverPlanDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return discoverPlanDirFrom(cwd)
}

func discoverPlanDirFrom(start string) (string, bool) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "plan.yaml")); err == nil {
			return dir, true
		}

		// A .git directory marks the project boundary. A plan above it
		// would belong to a different project.
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", false
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
