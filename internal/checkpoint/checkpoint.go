// Package checkpoint persists per-phase planning state inside a plan
// directory: one checkpoint file per completed phase, a run pointer, and
// stale markers for phases whose outputs predate an upstream revision.
package checkpoint

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/fingerprint"
	"github.com/planctl/planctl/internal/log"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
)

// stateVersion is written into run.json so later releases can migrate.
const stateVersion = "1"

// Decision is one recorded decision inside a phase checkpoint. Order is
// preserved exactly as saved.
type Decision struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Rationale string    `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	DecidedAt time.Time `json:"decided_at" yaml:"decided_at"`
}

// PhaseCheckpoint records the completion state of one phase. Revision starts
// at 0 on the first save and increments by one every time the phase is saved
// again.
type PhaseCheckpoint struct {
	Phase       phase.Phase          `json:"phase" yaml:"phase"`
	Revision    int                  `json:"revision" yaml:"revision"`
	CompletedAt time.Time            `json:"completed_at" yaml:"completed_at"`
	Summary     string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Decisions   []Decision           `json:"decisions,omitempty" yaml:"decisions,omitempty"`
	Outputs     fingerprint.Manifest `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	TreeHash    string               `json:"tree_hash,omitempty" yaml:"tree_hash,omitempty"`
}

// RunState is the run pointer stored in run.json. LastCompleted is the
// highest phase ever checkpointed; it never moves backwards. The derived
// completed prefix (see Manager.LastCompleted) is what resume trusts when
// the two disagree.
type RunState struct {
	Version       string      `json:"version" yaml:"version"`
	RunID         string      `json:"run_id" yaml:"run_id"`
	PlanType      string      `json:"plan_type" yaml:"plan_type"`
	LastCompleted phase.Phase `json:"last_completed" yaml:"last_completed"`
	StartedAt     time.Time   `json:"started_at" yaml:"started_at"`
	UpdatedAt     time.Time   `json:"updated_at" yaml:"updated_at"`
}

// StaleMarker flags a phase whose outputs predate a revision of an upstream
// phase. Markers are advisory: they are announced by status and context and
// cleared when the phase is saved again.
type StaleMarker struct {
	Phase    phase.Phase `json:"phase" yaml:"phase"`
	Source   phase.Phase `json:"source" yaml:"source"`
	Revision int         `json:"revision" yaml:"revision"`
	Reason   string      `json:"reason" yaml:"reason"`
	MarkedAt time.Time   `json:"marked_at" yaml:"marked_at"`
}

// Manager reads and writes the checkpoint state of one plan directory.
// Callers are expected to hold the plan's advisory lock around mutations.
type Manager struct {
	paths  planfile.Paths
	plan   *planfile.PlanRun
	logger *log.Logger
	now    func() time.Time
}

// NewManager creates a manager for the given plan.
func NewManager(paths planfile.Paths, plan *planfile.PlanRun) *Manager {
	return &Manager{
		paths:  paths,
		plan:   plan,
		logger: log.DefaultLogger().WithPlan(paths.Root()),
		now:    time.Now,
	}
}

// Save checkpoints a phase: it assigns the next revision number,
// fingerprints the phase's output directory, writes the checkpoint file,
// advances the run pointer, and clears any stale marker on the phase.
//
// Save does not require earlier phases to be checkpointed first; the run
// pointer only ever moves forward and resume derives the completed prefix
// from the checkpoint files themselves.
func (m *Manager) Save(ph phase.Phase, decisions []Decision, summary string) (*PhaseCheckpoint, error) {
	if !ph.Valid() {
		return nil, errors.NewPhaseOutOfRangeError(int(ph))
	}
	planType, err := m.plan.PlanType()
	if err != nil {
		return nil, err
	}
	if !planType.Contains(ph) {
		return nil, errors.NewPhaseNotInPlanError(int(ph), planType.String())
	}

	revision := 0
	prev, err := m.Load(ph)
	switch {
	case err == nil:
		revision = prev.Revision + 1
	case isCode(err, errors.ErrCodeCheckpointMissing):
	case isCode(err, errors.ErrCodeStateCorrupt):
		m.logger.WithPhase(int(ph)).Warn("existing checkpoint is unreadable, starting over at revision 0")
	default:
		return nil, err
	}

	now := m.now().UTC()
	for i := range decisions {
		if decisions[i].ID == "" {
			decisions[i].ID = fmt.Sprintf("D%d", i+1)
		}
		if decisions[i].DecidedAt.IsZero() {
			decisions[i].DecidedAt = now
		}
	}

	outputs, err := fingerprint.BuildManifest(m.paths.PhaseOutputDir(ph))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("fingerprint outputs of phase %d", int(ph)), err)
	}

	cp := &PhaseCheckpoint{
		Phase:       ph,
		Revision:    revision,
		CompletedAt: now,
		Summary:     summary,
		Decisions:   decisions,
		Outputs:     outputs,
		TreeHash:    outputs.TreeHash(),
	}
	if err := writeJSON(m.paths.CheckpointPath(ph), cp); err != nil {
		return nil, err
	}
	if err := m.advancePointer(ph, now); err != nil {
		return nil, err
	}
	if err := m.ClearStale(ph); err != nil {
		return nil, err
	}

	m.logger.WithPhase(int(ph)).Info("checkpoint saved", "revision", revision, "decisions", len(decisions))
	return cp, nil
}

// Load reads the checkpoint of one phase. A missing checkpoint and an
// unreadable one are distinct typed errors so callers can decide whether a
// broken store should be fatal.
func (m *Manager) Load(ph phase.Phase) (*PhaseCheckpoint, error) {
	if !ph.Valid() {
		return nil, errors.NewPhaseOutOfRangeError(int(ph))
	}
	path := m.paths.CheckpointPath(ph)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewCheckpointMissingError(int(ph))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read %s", path), err)
	}

	var cp PhaseCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, errors.NewStateCorruptError(path, err)
	}
	return &cp, nil
}

// Exists reports whether a checkpoint file is present for a phase, readable
// or not.
func (m *Manager) Exists(ph phase.Phase) bool {
	_, err := os.Stat(m.paths.CheckpointPath(ph))
	return err == nil
}

// List returns the readable checkpoints of the plan's phases in phase
// order. Unreadable checkpoint files are skipped with a warning so that a
// single corrupt file does not take down status or context.
func (m *Manager) List() ([]*PhaseCheckpoint, error) {
	planType, err := m.plan.PlanType()
	if err != nil {
		return nil, err
	}

	var out []*PhaseCheckpoint
	for _, ph := range planType.Sequence() {
		cp, err := m.Load(ph)
		switch {
		case err == nil:
			out = append(out, cp)
		case isCode(err, errors.ErrCodeCheckpointMissing):
		case isCode(err, errors.ErrCodeStateCorrupt):
			m.logger.WithPhase(int(ph)).Warn("skipping unreadable checkpoint")
		default:
			return nil, err
		}
	}
	return out, nil
}

// LastCompleted derives the contiguous completed prefix of the plan's phase
// sequence from the checkpoint files. A missing or unreadable checkpoint
// ends the prefix, so a corrupt store degrades to an earlier (or fresh)
// position instead of an error. The second result is false when no phase is
// completed.
func (m *Manager) LastCompleted() (phase.Phase, bool) {
	planType, err := m.plan.PlanType()
	if err != nil {
		return 0, false
	}

	var last phase.Phase
	found := false
	for _, ph := range planType.Sequence() {
		if _, err := m.Load(ph); err != nil {
			if isCode(err, errors.ErrCodeStateCorrupt) {
				m.logger.WithPhase(int(ph)).Warn("checkpoint is unreadable, treating phase as not completed")
			}
			break
		}
		last = ph
		found = true
	}
	return last, found
}

// RunState reads the run pointer. It returns (nil, nil) when no run has
// been recorded yet.
func (m *Manager) RunState() (*RunState, error) {
	data, err := os.ReadFile(m.paths.RunStatePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read run state", err)
	}

	var rs RunState
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, errors.NewStateCorruptError(m.paths.RunStatePath(), err)
	}
	return &rs, nil
}

func (m *Manager) advancePointer(ph phase.Phase, now time.Time) error {
	rs, err := m.RunState()
	if err != nil {
		if !isCode(err, errors.ErrCodeStateCorrupt) {
			return err
		}
		m.logger.Warn("run state is unreadable, rewriting it")
		rs = nil
	}
	if rs == nil {
		rs = &RunState{
			Version:   stateVersion,
			RunID:     m.plan.ID,
			PlanType:  m.plan.Type,
			StartedAt: now,
		}
	}
	if ph > rs.LastCompleted {
		rs.LastCompleted = ph
	}
	rs.UpdatedAt = now
	return writeJSON(m.paths.RunStatePath(), rs)
}

// Clear removes all checkpoint state so the next command sees a fresh run.
// The plan document and the phase output directories are left alone.
func (m *Manager) Clear() error {
	targets := []string{
		m.paths.CheckpointsDir(),
		m.paths.RevisionsDir(),
		m.paths.BackupsDir(),
		m.paths.StaleDir(),
	}
	for _, dir := range targets {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrap(errors.ErrCodeStateWriteFailed, fmt.Sprintf("remove %s", dir), err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("recreate %s", dir), err)
		}
	}
	if err := os.Remove(m.paths.RunStatePath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "remove run state", err)
	}
	m.logger.Info("checkpoint state cleared")
	return nil
}

// MarkStale writes a stale marker for a phase, replacing any existing one.
func (m *Manager) MarkStale(marker StaleMarker) error {
	if !marker.Phase.Valid() {
		return errors.NewPhaseOutOfRangeError(int(marker.Phase))
	}
	if marker.MarkedAt.IsZero() {
		marker.MarkedAt = m.now().UTC()
	}
	if err := writeJSON(m.paths.StalePath(marker.Phase), &marker); err != nil {
		return err
	}
	m.logger.WithPhase(int(marker.Phase)).Info("phase marked stale", "source", int(marker.Source), "revision", marker.Revision)
	return nil
}

// ClearStale removes the stale marker of a phase if one exists.
func (m *Manager) ClearStale(ph phase.Phase) error {
	if err := os.Remove(m.paths.StalePath(ph)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, fmt.Sprintf("clear stale marker for phase %d", int(ph)), err)
	}
	return nil
}

// StaleFor returns the stale marker of a phase, or nil when the phase is
// not stale.
func (m *Manager) StaleFor(ph phase.Phase) (*StaleMarker, error) {
	data, err := os.ReadFile(m.paths.StalePath(ph))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read stale marker for phase %d", int(ph)), err)
	}

	var marker StaleMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, errors.NewStateCorruptError(m.paths.StalePath(ph), err)
	}
	return &marker, nil
}

// StalePhases returns the stale markers of the plan's phases in phase
// order. Unreadable markers are skipped with a warning.
func (m *Manager) StalePhases() ([]StaleMarker, error) {
	planType, err := m.plan.PlanType()
	if err != nil {
		return nil, err
	}

	var out []StaleMarker
	for _, ph := range planType.Sequence() {
		marker, err := m.StaleFor(ph)
		switch {
		case err == nil && marker != nil:
			out = append(out, *marker)
		case err == nil:
		case isCode(err, errors.ErrCodeStateCorrupt):
			m.logger.WithPhase(int(ph)).Warn("skipping unreadable stale marker")
		default:
			return nil, err
		}
	}
	return out, nil
}

func isCode(err error, code errors.ErrorCode) bool {
	var perr *errors.PlanctlError
	return stderrors.As(err, &perr) && perr.Code == code
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create %s", filepath.Dir(path)), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, fmt.Sprintf("marshal %s", path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, fmt.Sprintf("write %s", path), err)
	}
	return nil
}
