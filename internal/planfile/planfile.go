// Package planfile defines the on-disk layout of a plan directory and the
// plan.yaml document that describes a planning run.
//
// A plan directory looks like:
//
//	plan.yaml                  the PlanRun document
//	phases/NN-<slug>/          output directory per phase
//	.state/                    machine-managed run state
//	    run.json               run pointer and metadata
//	    checkpoints/           one JSON checkpoint per completed phase
//	    revisions/             append-only revision records
//	    backups/               pre-revision output snapshots
//	    stale/                 stale markers for phases needing re-runs
//	    planctl.lock           advisory single-writer lock
package planfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/phase"
)

// PlanFileName is the name of the plan document inside a plan directory.
const PlanFileName = "plan.yaml"

// PlanRun describes a single planning run. It is authored once by `planctl
// init` and may be hand-edited afterwards to attach sub-task commands to
// phases.
type PlanRun struct {
	ID      string    `yaml:"id" json:"id"`
	Project string    `yaml:"project" json:"project"`
	Type    string    `yaml:"type" json:"type"`
	Created time.Time `yaml:"created" json:"created"`

	// Phases optionally configures per-phase sub-tasks, keyed by phase slug
	// (e.g. "market-research"). Phases without an entry run with no
	// sub-tasks and produce an empty output directory.
	Phases map[string]PhaseConfig `yaml:"phases,omitempty" json:"phases,omitempty"`
}

// PhaseConfig holds the user-editable configuration for one phase.
type PhaseConfig struct {
	Subtasks []Subtask `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
}

// Subtask is a single command executed during a phase run. Command is an
// argv vector; it is executed directly, not through a shell.
type Subtask struct {
	Name    string   `yaml:"name" json:"name"`
	Command []string `yaml:"command" json:"command"`
}

// PlanType returns the parsed plan type.
func (p *PlanRun) PlanType() (phase.PlanType, error) {
	return phase.ParsePlanType(p.Type)
}

// SubtasksFor returns the configured sub-tasks for a phase, or nil when the
// phase has no configuration.
func (p *PlanRun) SubtasksFor(ph phase.Phase) []Subtask {
	if p.Phases == nil {
		return nil
	}
	cfg, ok := p.Phases[ph.Slug()]
	if !ok {
		return nil
	}
	return cfg.Subtasks
}

// Validate checks that the document is internally consistent.
func (p *PlanRun) Validate() error {
	if p.ID == "" {
		return errors.New(errors.ErrCodePlanInvalid, "plan is missing an id")
	}
	if p.Project == "" {
		return errors.New(errors.ErrCodePlanInvalid, "plan is missing a project name")
	}
	t, err := phase.ParsePlanType(p.Type)
	if err != nil {
		return errors.New(errors.ErrCodePlanTypeUnknown, fmt.Sprintf("unknown plan type %q", p.Type)).
			WithSuggestion("Use \"full\" or \"tech\"")
	}
	seq := t.Sequence()
	for slug := range p.Phases {
		ph, ok := phaseBySlug(slug)
		if !ok {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("unknown phase %q in plan configuration", slug))
		}
		if !t.Contains(ph) {
			return errors.New(errors.ErrCodePhaseNotInPlan,
				fmt.Sprintf("phase %q is not part of a %s plan (phases: %v)", slug, t, seq))
		}
	}
	for slug, cfg := range p.Phases {
		for i, st := range cfg.Subtasks {
			if len(st.Command) == 0 {
				return errors.New(errors.ErrCodePlanInvalid,
					fmt.Sprintf("phase %q sub-task %d has an empty command", slug, i))
			}
		}
	}
	return nil
}

func phaseBySlug(slug string) (phase.Phase, bool) {
	for _, ph := range phase.All() {
		if ph.Slug() == slug {
			return ph, true
		}
	}
	return 0, false
}

// Paths resolves the well-known locations inside a plan directory. The zero
// value is not useful; construct with NewPaths.
type Paths struct {
	root string
}

// NewPaths returns a Paths handle rooted at dir.
func NewPaths(dir string) Paths {
	return Paths{root: dir}
}

// Root returns the plan directory itself.
func (p Paths) Root() string { return p.root }

// PlanFile returns the path of the plan.yaml document.
func (p Paths) PlanFile() string { return filepath.Join(p.root, PlanFileName) }

// PhasesDir returns the directory holding per-phase output directories.
func (p Paths) PhasesDir() string { return filepath.Join(p.root, "phases") }

// PhaseOutputDir returns the output directory for a phase, e.g.
// phases/02-architecture.
func (p Paths) PhaseOutputDir(ph phase.Phase) string {
	return filepath.Join(p.PhasesDir(), ph.Dir())
}

// StateDir returns the machine-managed state directory.
func (p Paths) StateDir() string { return filepath.Join(p.root, ".state") }

// RunStatePath returns the path of the run pointer file.
func (p Paths) RunStatePath() string { return filepath.Join(p.StateDir(), "run.json") }

// CheckpointsDir returns the directory holding phase checkpoints.
func (p Paths) CheckpointsDir() string { return filepath.Join(p.StateDir(), "checkpoints") }

// CheckpointPath returns the checkpoint file for a phase.
func (p Paths) CheckpointPath(ph phase.Phase) string {
	return filepath.Join(p.CheckpointsDir(), fmt.Sprintf("phase-%d.json", int(ph)))
}

// RevisionsDir returns the directory holding revision records.
func (p Paths) RevisionsDir() string { return filepath.Join(p.StateDir(), "revisions") }

// RevisionPath returns the record file for one revision of a phase.
func (p Paths) RevisionPath(ph phase.Phase, rev int) string {
	return filepath.Join(p.RevisionsDir(), fmt.Sprintf("phase-%d-rev-%03d.json", int(ph), rev))
}

// BackupsDir returns the directory holding pre-revision backups.
func (p Paths) BackupsDir() string { return filepath.Join(p.StateDir(), "backups") }

// BackupDir returns the backup directory for one revision of a phase.
func (p Paths) BackupDir(ph phase.Phase, rev int) string {
	return filepath.Join(p.BackupsDir(), fmt.Sprintf("phase-%d-rev-%03d", int(ph), rev))
}

// StaleDir returns the directory holding stale markers.
func (p Paths) StaleDir() string { return filepath.Join(p.StateDir(), "stale") }

// StalePath returns the stale marker file for a phase.
func (p Paths) StalePath(ph phase.Phase) string {
	return filepath.Join(p.StaleDir(), fmt.Sprintf("phase-%d.json", int(ph)))
}

// LockPath returns the advisory lock file guarding the state directory.
func (p Paths) LockPath() string { return filepath.Join(p.StateDir(), "planctl.lock") }

// Exists reports whether dir already contains a plan document.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, PlanFileName))
	return err == nil
}

// Load reads and validates the plan document in dir.
func Load(dir string) (*PlanRun, error) {
	path := filepath.Join(dir, PlanFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(dir)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read %s", path), err)
	}

	var run PlanRun
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrap(errors.ErrCodePlanInvalid, fmt.Sprintf("parse %s", path), err).
			WithSuggestion("Fix the YAML syntax or re-run 'planctl init'")
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &run, nil
}

// Save writes the plan document into dir, creating the directory if needed.
func Save(run *PlanRun, dir string) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create %s", dir), err)
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal plan", err)
	}
	path := filepath.Join(dir, PlanFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// Init scaffolds a new plan directory: plan.yaml, one output directory per
// phase of the plan type, and the state directory tree. It fails when dir
// already holds a plan.
func Init(dir, project string, t phase.PlanType) (*PlanRun, error) {
	if Exists(dir) {
		return nil, errors.New(errors.ErrCodePlanExists, fmt.Sprintf("plan already initialized in %s", dir)).
			WithSuggestion("Use 'planctl status' to inspect it, or choose another directory")
	}

	run := &PlanRun{
		ID:      uuid.NewString(),
		Project: project,
		Type:    t.String(),
		Created: time.Now().UTC(),
	}
	if err := Save(run, dir); err != nil {
		return nil, err
	}

	paths := NewPaths(dir)
	dirs := []string{
		paths.StateDir(),
		paths.CheckpointsDir(),
		paths.RevisionsDir(),
		paths.BackupsDir(),
		paths.StaleDir(),
	}
	for _, ph := range t.Sequence() {
		dirs = append(dirs, paths.PhaseOutputDir(ph))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create %s", d), err)
		}
	}
	return run, nil
}
