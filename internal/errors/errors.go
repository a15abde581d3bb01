package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan document errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound    ErrorCode = "PLAN-001"
	ErrCodePlanInvalid     ErrorCode = "PLAN-002"
	ErrCodePlanExists      ErrorCode = "PLAN-003"
	ErrCodePlanTypeUnknown ErrorCode = "PLAN-004"

	// Checkpoint store errors (STATE-001 to STATE-099)
	ErrCodeStateNotFound     ErrorCode = "STATE-001"
	ErrCodeStateCorrupt      ErrorCode = "STATE-002"
	ErrCodeCheckpointMissing ErrorCode = "STATE-003"
	ErrCodeStateWriteFailed  ErrorCode = "STATE-004"

	// Phase validation errors (PHASE-001 to PHASE-099)
	ErrCodePhaseOutOfRange   ErrorCode = "PHASE-001"
	ErrCodePhaseNotInPlan    ErrorCode = "PHASE-002"
	ErrCodePhaseNotCompleted ErrorCode = "PHASE-003"

	// Revision errors (REV-001 to REV-099)
	ErrCodeRevisionBackupFailed ErrorCode = "REV-001"
	ErrCodeRevisionRerunFailed  ErrorCode = "REV-002"
	ErrCodeRevisionRecordFailed ErrorCode = "REV-003"
	ErrCodeCascadeIncomplete    ErrorCode = "REV-004"
	ErrCodeRevisionState        ErrorCode = "REV-005"

	// Subtask execution errors (RUN-001 to RUN-099)
	ErrCodeSubtaskFailed   ErrorCode = "RUN-001"
	ErrCodeSubtaskCanceled ErrorCode = "RUN-002"

	// Lock errors (LOCK-001 to LOCK-099)
	ErrCodeLockHeld   ErrorCode = "LOCK-001"
	ErrCodeLockFailed ErrorCode = "LOCK-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// PlanctlError represents an enhanced error with code, suggestions, and documentation
type PlanctlError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PlanctlError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PlanctlError) Unwrap() error {
	return e.Cause
}

// New creates a new PlanctlError
func New(code ErrorCode, message string) *PlanctlError {
	return &PlanctlError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PlanctlError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PlanctlError {
	return &PlanctlError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PlanctlError) WithSuggestion(suggestion string) *PlanctlError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PlanctlError) WithSuggestions(suggestions ...string) *PlanctlError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PlanctlError) WithDocs(url string) *PlanctlError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a plan document not found error
func NewPlanNotFoundError(dir string) *PlanctlError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("no plan found in: %s", dir)).
		WithSuggestion("Run 'planctl init --project <name>' to start a new plan").
		WithSuggestion("Run 'planctl list' to find existing plans").
		WithDocs("https://github.com/planctl/planctl#getting-started")
}

// NewStateCorruptError creates a corrupted checkpoint store error.
// Callers treat this as "no prior run": the store is never repaired
// automatically.
func NewStateCorruptError(path string, cause error) *PlanctlError {
	return Wrap(ErrCodeStateCorrupt, fmt.Sprintf("checkpoint store is unreadable: %s", path), cause).
		WithSuggestion("Treating this as no prior run; previous progress cannot be resumed").
		WithSuggestion("Run 'planctl clear' to remove the corrupted state and start over").
		WithDocs("https://github.com/planctl/planctl#recovering-state")
}

// NewCheckpointMissingError creates a missing checkpoint error
func NewCheckpointMissingError(phase int) *PlanctlError {
	return New(ErrCodeCheckpointMissing, fmt.Sprintf("no checkpoint exists for phase %d", phase)).
		WithSuggestion("Run 'planctl status' to see which phases are completed").
		WithSuggestion(fmt.Sprintf("Complete phase %d before operating on it", phase))
}

// NewPhaseOutOfRangeError creates an invalid phase number error
func NewPhaseOutOfRangeError(phase int) *PlanctlError {
	return New(ErrCodePhaseOutOfRange, fmt.Sprintf("phase number out of range: %d", phase)).
		WithSuggestion("Phase numbers run from 1 to 6").
		WithSuggestion("Run 'planctl phases' to list all phases")
}

// NewPhaseNotInPlanError creates an error for a phase excluded by the plan type
func NewPhaseNotInPlanError(phase int, planType string) *PlanctlError {
	return New(ErrCodePhaseNotInPlan, fmt.Sprintf("phase %d is not part of a %s plan", phase, planType)).
		WithSuggestion("Run 'planctl phases' to see the phases of this plan type")
}

// NewPhaseNotCompletedError creates an error for operating past the last completed phase
func NewPhaseNotCompletedError(phase int, lastCompleted int) *PlanctlError {
	return New(ErrCodePhaseNotCompleted, fmt.Sprintf("phase %d has not been completed yet (last completed: %d)", phase, lastCompleted)).
		WithSuggestion("Phases can only be revised after they have a checkpoint").
		WithSuggestion("Run 'planctl resume' to pick up from the next pending phase")
}

// NewLockHeldError creates an error for a plan directory locked by another process
func NewLockHeldError(path string) *PlanctlError {
	return New(ErrCodeLockHeld, fmt.Sprintf("another planctl process holds the lock: %s", path)).
		WithSuggestion("Wait for the other invocation to finish").
		WithSuggestion("If no other process is running, delete the lock file manually")
}

// NewRevisionRerunFailedError creates an error for a failed phase re-execution.
// The phase keeps its pre-revision checkpoint; the recorded feedback survives
// for the next attempt.
func NewRevisionRerunFailedError(phase int, cause error) *PlanctlError {
	return Wrap(ErrCodeRevisionRerunFailed, fmt.Sprintf("re-execution of phase %d failed", phase), cause).
		WithSuggestion("The phase checkpoint is unchanged; fix the underlying problem and re-run the same command").
		WithSuggestion("Your feedback has been recorded and will not be lost")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *PlanctlError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PlanctlError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
