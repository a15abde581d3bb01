package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/planctl/planctl/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// CheckpointMissing indicates a required phase checkpoint does not exist
	CheckpointMissing = 3

	// PhaseOutOfRange indicates a phase number outside 1..6 or outside the plan type
	PhaseOutOfRange = 4

	// LockHeld indicates another planctl process holds the plan directory lock
	LockHeld = 5

	// Interrupted indicates the process was canceled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Coded errors map directly; anything else falls back to message heuristics.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var perr *errors.PlanctlError
	if stderrors.As(err, &perr) {
		switch perr.Code {
		case errors.ErrCodeCheckpointMissing, errors.ErrCodePhaseNotCompleted:
			return CheckpointMissing
		case errors.ErrCodePhaseOutOfRange, errors.ErrCodePhaseNotInPlan:
			return PhaseOutOfRange
		case errors.ErrCodeLockHeld:
			return LockHeld
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Missing checkpoints
	if strings.Contains(errMsg, "no checkpoint") || strings.Contains(errMsg, "checkpoint not found") {
		return CheckpointMissing
	}

	// Phase validation
	if strings.Contains(errMsg, "out of range") || strings.Contains(errMsg, "invalid phase") {
		return PhaseOutOfRange
	}

	// Lock contention
	if strings.Contains(errMsg, "holds the lock") || strings.Contains(errMsg, "lock is held") {
		return LockHeld
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case CheckpointMissing:
		return "Required checkpoint missing"
	case PhaseOutOfRange:
		return "Phase number out of range"
	case LockHeld:
		return "Plan directory locked by another process"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
