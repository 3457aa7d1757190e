package engine

import (
	"context"
	"time"
)

// Result represents the outcome of one LLM invocation.
type Result struct {
	Success     bool          // Whether the invocation succeeded
	Output      string        // Result text from the engine
	Duration    time.Duration // How long the invocation took
	TimedOut    bool          // The call exceeded its bound
	Unparseable bool          // The call succeeded but its envelope could not be decoded
	Error       error         // Any error that occurred
}

// Engine is the LLM invocation boundary: one prompt in, one result envelope
// out. Implementations are long-running external calls bounded by the
// context deadline; they never panic across this boundary.
type Engine interface {
	// Name returns the engine identifier (e.g., "claude").
	Name() string

	// Invoke runs the prompt and returns the result envelope.
	Invoke(ctx context.Context, prompt string) Result
}

// DefaultTimeout is the ceiling for an engine invocation. Callers set the
// effective per-step bound through the context deadline.
const DefaultTimeout = 10 * time.Minute
