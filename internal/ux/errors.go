package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/planctl/planctl/internal/errors"
)

// ErrorWithSuggestion wraps an error with a recovery suggestion
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a contextual suggestion to errors that reach the
// CLI boundary without one. Coded errors already carry their own
// suggestions and pass through untouched.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *errors.PlanctlError
	if stderrors.As(err, &coded) {
		return err
	}

	errMsg := err.Error()

	// Missing store artifacts
	if strings.Contains(errMsg, "no such file or directory") {
		if strings.Contains(errMsg, "plan.yaml") {
			return NewErrorWithSuggestion(err,
				"Run 'planctl init --project <name>' to start a plan, or pass the plan directory with --dir")
		}
		if strings.Contains(errMsg, "run.json") || strings.Contains(errMsg, "checkpoints") {
			return NewErrorWithSuggestion(err,
				"No saved progress yet. Record a completed phase with 'planctl save <phase> --summary ...'")
		}
	}

	// Corrupt JSON in the state store
	if strings.Contains(errMsg, "invalid character") || strings.Contains(errMsg, "unexpected end of JSON") {
		return NewErrorWithSuggestion(err,
			"The checkpoint store looks corrupt. 'planctl status' shows what is still readable; 'planctl clear' starts over")
	}

	// Malformed plan.yaml
	if strings.Contains(errMsg, "cannot unmarshal") || strings.Contains(errMsg, "yaml:") {
		return NewErrorWithSuggestion(err,
			"Check plan.yaml for syntax errors, or re-create it with 'planctl init'")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check file permissions on the plan directory and its .state subdirectory")
	}

	// Lock contention surfaced as a raw flock error
	if strings.Contains(errMsg, "resource temporarily unavailable") {
		return NewErrorWithSuggestion(err,
			"Another planctl command is running against this plan. Wait for it to finish")
	}

	// Generic suggestion based on what exists on disk
	if strings.Contains(errMsg, "failed to") {
		return NewErrorWithSuggestion(err,
			fmt.Sprintf("Next steps: %s", SuggestNextSteps(".")))
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
