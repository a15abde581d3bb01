package ux

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/planctl/planctl/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		suggestion string
		wantNil    bool
	}{
		{
			name:       "nil error returns nil",
			err:        nil,
			suggestion: "some suggestion",
			wantNil:    true,
		},
		{
			name:       "error with suggestion",
			err:        stderrors.New("something failed"),
			suggestion: "try this fix",
			wantNil:    false,
		},
		{
			name:       "error without suggestion",
			err:        stderrors.New("something failed"),
			suggestion: "",
			wantNil:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewErrorWithSuggestion(tt.err, tt.suggestion)
			if tt.wantNil {
				if result != nil {
					t.Errorf("NewErrorWithSuggestion() = %v, want nil", result)
				}
				return
			}

			if result == nil {
				t.Fatal("NewErrorWithSuggestion() returned nil, want error")
			}

			errMsg := result.Error()
			if !strings.Contains(errMsg, tt.err.Error()) {
				t.Errorf("Error message %q does not contain original error %q", errMsg, tt.err.Error())
			}
			if tt.suggestion != "" && !strings.Contains(errMsg, tt.suggestion) {
				t.Errorf("Error message %q does not contain suggestion %q", errMsg, tt.suggestion)
			}
		})
	}
}

func TestErrorWithSuggestionUnwrap(t *testing.T) {
	origErr := stderrors.New("original error")
	e := &ErrorWithSuggestion{
		Err:        origErr,
		Suggestion: "some suggestion",
	}

	if unwrapped := e.Unwrap(); unwrapped != origErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, origErr)
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{
			name:           "missing plan file",
			err:            stderrors.New("open /plans/demo/plan.yaml: no such file or directory"),
			wantSuggestion: "planctl init",
		},
		{
			name:           "missing run state",
			err:            stderrors.New("open .state/run.json: no such file or directory"),
			wantSuggestion: "planctl save",
		},
		{
			name:           "corrupt json store",
			err:            stderrors.New("invalid character 'x' looking for beginning of value"),
			wantSuggestion: "planctl clear",
		},
		{
			name:           "malformed yaml",
			err:            stderrors.New("yaml: line 3: cannot unmarshal !!str into int"),
			wantSuggestion: "plan.yaml",
		},
		{
			name:           "permission denied",
			err:            stderrors.New("open .state/run.json: permission denied"),
			wantSuggestion: "permissions",
		},
		{
			name:           "flock contention",
			err:            stderrors.New("flock: resource temporarily unavailable"),
			wantSuggestion: "Another planctl command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(tt.err)
			if enhanced == nil {
				t.Fatal("EnhanceError() returned nil")
			}
			if !strings.Contains(enhanced.Error(), tt.wantSuggestion) {
				t.Errorf("EnhanceError() = %q, want suggestion containing %q", enhanced.Error(), tt.wantSuggestion)
			}
		})
	}
}

func TestEnhanceErrorNil(t *testing.T) {
	if got := EnhanceError(nil); got != nil {
		t.Errorf("EnhanceError(nil) = %v, want nil", got)
	}
}

func TestEnhanceErrorPassesThroughCodedErrors(t *testing.T) {
	coded := errors.NewPlanNotFoundError("/plans/demo")

	enhanced := EnhanceError(coded)
	if enhanced != error(coded) {
		t.Errorf("EnhanceError() rewrapped a coded error: %v", enhanced)
	}

	// Wrapped coded errors pass through too.
	wrapped := fmt.Errorf("loading plan: %w", coded)
	if got := EnhanceError(wrapped); got != wrapped {
		t.Errorf("EnhanceError() rewrapped a wrapped coded error: %v", got)
	}
}

func TestEnhanceErrorLeavesUnknownErrors(t *testing.T) {
	err := stderrors.New("some opaque condition")
	if got := EnhanceError(err); got != err {
		t.Errorf("EnhanceError() = %v, want the original error unchanged", got)
	}
}

func TestFormatError(t *testing.T) {
	if got := FormatError(nil, "context"); got != nil {
		t.Errorf("FormatError(nil) = %v, want nil", got)
	}

	err := stderrors.New("boom")
	got := FormatError(err, "loading checkpoint")
	if got == nil {
		t.Fatal("FormatError() = nil, want error")
	}
	if !strings.Contains(got.Error(), "loading checkpoint: boom") {
		t.Errorf("FormatError() = %q, want context prefix", got.Error())
	}
	if !stderrors.Is(got, err) {
		t.Error("FormatError() result does not unwrap to the original error")
	}
}
