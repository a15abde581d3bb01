package resume

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/planctl/planctl/internal/log"
	"github.com/planctl/planctl/internal/planfile"
)

// DiscoveredPlan is one plan directory found under a search root.
type DiscoveredPlan struct {
	Dir  string
	Plan *planfile.PlanRun
}

// Discover finds plan directories at root and one level below it, sorted by
// path. Directories holding an unparseable plan.yaml are skipped with a
// warning; the user picks from what is found.
func Discover(root string) ([]DiscoveredPlan, error) {
	logger := log.DefaultLogger()

	var found []DiscoveredPlan
	tryDir := func(dir string) {
		if !planfile.Exists(dir) {
			return
		}
		plan, err := planfile.Load(dir)
		if err != nil {
			logger.WithPlan(dir).WithError(err).Warn("skipping directory with unreadable plan")
			return
		}
		found = append(found, DiscoveredPlan{Dir: dir, Plan: plan})
	}

	tryDir(root)

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) && len(found) == 0 {
			return nil, nil
		}
		if len(found) > 0 {
			return found, nil
		}
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".state" {
			continue
		}
		tryDir(filepath.Join(root, entry.Name()))
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Dir < found[j].Dir })
	return found, nil
}
