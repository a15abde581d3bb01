package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planctl/planctl/internal/errors"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".state", "planctl.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)

	assert.Equal(t, path, lock.Path())
	_, err = os.Stat(path)
	assert.NoError(t, err, "lock file not created")

	assert.NoError(t, lock.Release())
}

func TestAcquireContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planctl.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	defer first.Release()

	_, err = Acquire(path)
	require.Error(t, err, "second Acquire should fail while the lock is held")

	var perr *errors.PlanctlError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeLockHeld, perr.Code)
	assert.Contains(t, perr.Message, path, "lock error should name the lock path")
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planctl.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err, "lock should be free again after release")
	second.Release()
}

func TestReleaseNil(t *testing.T) {
	var lock *Lock
	assert.NoError(t, lock.Release())
}
