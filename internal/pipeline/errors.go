package pipeline

import "strings"

// ErrorKind classifies step and checkpoint failures. Every failure crossing a
// component boundary carries one of these, never an untyped panic.
type ErrorKind string

const (
	// ErrMissingInput means a required step input was absent; the step was
	// not attempted.
	ErrMissingInput ErrorKind = "missing_input"
	// ErrExternalCallFailed means the LLM or tracker call returned failure.
	ErrExternalCallFailed ErrorKind = "external_call_failed"
	// ErrTimedOut means the external call exceeded its bound.
	ErrTimedOut ErrorKind = "timed_out"
	// ErrOutputNotParseable means the call succeeded but its response shape
	// was unusable.
	ErrOutputNotParseable ErrorKind = "output_not_parseable"
	// ErrCorruptCheckpoint means stored run state could not be read back.
	ErrCorruptCheckpoint ErrorKind = "corrupt_checkpoint"
	// ErrPartialGraph means some work items or edges were created and others
	// failed during tracker integration.
	ErrPartialGraph ErrorKind = "partial_graph_failure"
)

// StepError is the tagged error carried in a step's result envelope.
// Details itemizes partial progress (what succeeded, what did not) so the
// operator can scope a retry to only the missing pieces.
type StepError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

func (e *StepError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + "\n  " + strings.Join(e.Details, "\n  ")
}
