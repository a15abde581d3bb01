// Package lockfile guards a plan's state directory with an advisory file
// lock so that only one planctl process mutates it at a time.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/planctl/planctl/internal/errors"
)

// Lock is a held advisory lock. Release it when the state mutation is done.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. When another process
// already holds it, Acquire fails with a lock-held error rather than
// waiting; the caller is expected to surface that to the user.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLockFailed, fmt.Sprintf("create lock directory for %s", path), err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLockFailed, fmt.Sprintf("acquire lock %s", path), err)
	}
	if !ok {
		return nil, errors.NewLockHeldError(path)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}

// Release drops the lock. It is safe to call on a nil Lock and may be
// deferred immediately after Acquire.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
