package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/jywlabs/groundwork/internal/engine"
)

func init() {
	engine.RegisterEngine("claude", func() engine.Engine {
		return New()
	})
}

// Engine invokes prompts through the Claude Code CLI in one-shot JSON mode.
type Engine struct {
	Timeout time.Duration
}

// New creates a Claude engine with the default timeout.
func New() *Engine {
	return &Engine{
		Timeout: engine.DefaultTimeout,
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "claude"
}

// claudeResponse is the JSON envelope the Claude CLI prints with
// --output-format json.
type claudeResponse struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
}

// Invoke runs the prompt via `claude -p --output-format json` and parses the
// JSON envelope. The context deadline (or e.Timeout) bounds the call.
func (e *Engine) Invoke(ctx context.Context, prompt string) engine.Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = engine.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "claude", "-p", "--output-format", "json", prompt)

	// No controlling terminal: keeps the CLI from emitting interactive
	// hints that would pollute the JSON envelope.
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return engine.Result{
				Duration: duration,
				TimedOut: true,
				Error:    fmt.Errorf("claude invocation timed out after %s: %w", timeout, ctx.Err()),
			}
		}
		if stderr.Len() > 0 {
			return engine.Result{
				Output:   stdout.String(),
				Duration: duration,
				Error:    fmt.Errorf("claude invocation failed: %w: %s", err, stderr.String()),
			}
		}
		return engine.Result{
			Output:   stdout.String(),
			Duration: duration,
			Error:    fmt.Errorf("claude invocation failed: %w", err),
		}
	}

	result := parseResponse(stdout.Bytes())
	result.Duration = duration
	return result
}

// parseResponse decodes the CLI's JSON envelope. An undecodable envelope is
// reported as Unparseable, distinct from a failed call.
func parseResponse(data []byte) engine.Result {
	var resp claudeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return engine.Result{
			Output:      string(data),
			Unparseable: true,
			Error:       fmt.Errorf("failed to parse claude response: %w", err),
		}
	}

	if resp.Subtype == "success" && !resp.IsError {
		return engine.Result{
			Success: true,
			Output:  resp.Result,
		}
	}

	errMsg := resp.Subtype
	if resp.Result != "" {
		errMsg = resp.Result
	}
	return engine.Result{
		Output: resp.Result,
		Error:  fmt.Errorf("claude execution failed: %s", errMsg),
	}
}
