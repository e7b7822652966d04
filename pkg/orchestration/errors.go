package orchestration

import (
	"errors"
	"fmt"
)

// ErrEmptySubmission is returned when submitted text trims to nothing. The
// submit affordance should be disabled before this can happen; the controller
// still rejects it so no turn is ever created for blank input.
var ErrEmptySubmission = errors.New("submission is empty")

// ErrTurnNotFound is returned when a turn identifier does not resolve. Like a
// stale message identifier, this indicates a logic fault and is never
// silently ignored.
var ErrTurnNotFound = errors.New("turn not found")

// TranslationError marks a turn that failed while generating a query.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// ExecutionError marks a turn that failed while running the confirmed query.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// CaptureError marks a failed speech capture. It never terminates a turn;
// capture happens before submission.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("speech capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
