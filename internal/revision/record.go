// Package revision implements the guided workflow for revising an already
// completed phase: back up its outputs, re-execute it, decide what happens
// to the phases built on top of it, and checkpoint the result. Every step
// is persisted to an append-only record so an interrupted revision can be
// inspected and picked up.
package revision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/phase"
	"github.com/planctl/planctl/internal/planfile"
)

// State is the position of a revision inside the workflow. Transitions are
// strictly linear; a record never moves backwards.
type State string

const (
	StateIdentified     State = "identified"
	StateBackedUp       State = "backed_up"
	StateReexecuted     State = "reexecuted"
	StateCascadeDecided State = "cascade_decided"
	StateCascadeApplied State = "cascade_applied"
	StateCheckpointed   State = "checkpointed"
)

// CascadeChoice is the human decision about downstream phases after a
// revision.
type CascadeChoice string

const (
	// CascadeAuto re-executes every affected dependent in phase order.
	CascadeAuto CascadeChoice = "auto"
	// CascadeManual marks dependents stale for the user to redo by hand.
	CascadeManual CascadeChoice = "manual"
	// CascadeNone marks dependents stale and otherwise leaves them alone.
	CascadeNone CascadeChoice = "none"
)

// ParseCascade parses a cascade choice from user input.
func ParseCascade(s string) (CascadeChoice, error) {
	switch CascadeChoice(s) {
	case CascadeAuto, CascadeManual, CascadeNone:
		return CascadeChoice(s), nil
	}
	return "", errors.New(errors.ErrCodeRevisionState, fmt.Sprintf("unknown cascade choice %q", s)).
		WithSuggestion("Choose auto, manual, or none")
}

// Record is the persisted trail of one revision of one phase. Records are
// append-only: each revision gets its own file and earlier files are never
// rewritten once checkpointed.
type Record struct {
	Phase    phase.Phase `json:"phase" yaml:"phase"`
	Revision int         `json:"revision" yaml:"revision"`
	Feedback string      `json:"feedback" yaml:"feedback"`
	State    State       `json:"state" yaml:"state"`

	BackupDir  string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`
	BackupHash string `json:"backup_hash,omitempty" yaml:"backup_hash,omitempty"`

	Impact     phase.Impact  `json:"impact" yaml:"impact"`
	Cascade    CascadeChoice `json:"cascade,omitempty" yaml:"cascade,omitempty"`
	Reexecuted []phase.Phase `json:"reexecuted,omitempty" yaml:"reexecuted,omitempty"`
	Stale      []phase.Phase `json:"stale,omitempty" yaml:"stale,omitempty"`

	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

func saveRecord(paths planfile.Paths, rec *Record) error {
	path := paths.RevisionPath(rec.Phase, rec.Revision)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeRevisionRecordFailed, fmt.Sprintf("create %s", filepath.Dir(path)), err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeRevisionRecordFailed, "marshal revision record", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeRevisionRecordFailed, fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// LoadRecord reads one revision record.
func LoadRecord(paths planfile.Paths, ph phase.Phase, rev int) (*Record, error) {
	path := paths.RevisionPath(ph, rev)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeRevisionRecordFailed,
				fmt.Sprintf("no revision record for phase %d revision %d", int(ph), rev))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read %s", path), err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.NewStateCorruptError(path, err)
	}
	return &rec, nil
}

// History returns all revision records of a phase in revision order.
// Unreadable records are skipped.
func History(paths planfile.Paths, ph phase.Phase) ([]*Record, error) {
	entries, err := os.ReadDir(paths.RevisionsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read revisions directory", err)
	}

	prefix := fmt.Sprintf("phase-%d-rev-", int(ph))
	var out []*Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		rev, err := strconv.Atoi(strings.TrimSuffix(name[len(prefix):], ".json"))
		if err != nil {
			continue
		}
		rec, err := LoadRecord(paths, ph, rev)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	// ReadDir returns names sorted, and zero-padded revisions sort
	// numerically up to 999.
	return out, nil
}

// Latest returns the newest revision record of a phase, or nil when the
// phase has never been revised.
func Latest(paths planfile.Paths, ph phase.Phase) (*Record, error) {
	history, err := History(paths, ph)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return history[len(history)-1], nil
}
