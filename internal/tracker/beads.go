package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// DefaultTimeout bounds each tracker CLI invocation.
const DefaultTimeout = 30 * time.Second

// Beads drives the beads (bd) issue tracker CLI. Every call shells out to bd
// with --json and a bounded timeout.
type Beads struct {
	Bin     string        // bd binary, defaults to "bd"
	Dir     string        // working directory for invocations
	Timeout time.Duration // per-call bound, defaults to DefaultTimeout
}

// NewBeads creates a beads client with defaults applied.
func NewBeads(bin, dir string, timeout time.Duration) *Beads {
	if bin == "" {
		bin = "bd"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Beads{Bin: bin, Dir: dir, Timeout: timeout}
}

// createResponse is the envelope bd prints for create. Depending on version
// the issue appears under "issue" or at the top level.
type createResponse struct {
	ID    string `json:"id"`
	Issue *Issue `json:"issue,omitempty"`
}

// Create creates an issue and returns its id.
func (b *Beads) Create(ctx context.Context, title, issueType string, priority int) (string, error) {
	args := []string{"create", "--title", title, "--json"}
	if issueType != "" {
		args = append(args, "--type", issueType)
	}
	if priority > 0 {
		args = append(args, "--priority", strconv.Itoa(priority))
	}

	out, err := b.run(ctx, args...)
	if err != nil {
		return "", err
	}

	var resp createResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", fmt.Errorf("failed to parse bd create response: %w", err)
	}
	if resp.Issue != nil && resp.Issue.ID != "" {
		return resp.Issue.ID, nil
	}
	if resp.ID == "" {
		return "", fmt.Errorf("bd create response contained no issue id")
	}
	return resp.ID, nil
}

// List enumerates issues, optionally filtered by status.
func (b *Beads) List(ctx context.Context, statusFilter Status) ([]Issue, error) {
	args := []string{"list", "--json"}
	if statusFilter != "" {
		args = append(args, "--status", string(statusFilter))
	}

	out, err := b.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return decodeIssues(out)
}

// Close closes an issue.
func (b *Beads) Close(ctx context.Context, id, reason string) error {
	args := []string{"close", id}
	if reason != "" {
		args = append(args, "--reason", reason)
	}
	_, err := b.run(ctx, args...)
	return err
}

// AddDependency records that id depends on dependsOnID.
func (b *Beads) AddDependency(ctx context.Context, id, dependsOnID string) error {
	_, err := b.run(ctx, "dep", "add", id, dependsOnID)
	return err
}

// Sync pushes local state to the remote tracker.
func (b *Beads) Sync(ctx context.Context) error {
	_, err := b.run(ctx, "sync")
	return err
}

// run invokes bd with a bounded timeout and returns stdout. Non-zero exit
// and timeouts come back as errors, never as an unhandled fault.
func (b *Beads) run(ctx context.Context, args ...string) ([]byte, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := b.Bin
	if bin == "" {
		bin = "bd"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = b.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("bd %s timed out after %s: %w", args[0], timeout, ctx.Err())
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("bd %s failed: %w: %s", args[0], err, stderr.String())
		}
		return nil, fmt.Errorf("bd %s failed: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}

// decodeIssues normalizes bd's "maybe list, maybe single object" output into
// always-a-slice, so callers never branch on response shape.
func decodeIssues(data []byte) ([]Issue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var issues []Issue
		if err := json.Unmarshal(trimmed, &issues); err != nil {
			return nil, fmt.Errorf("failed to parse bd issue list: %w", err)
		}
		return issues, nil
	}

	var issue Issue
	if err := json.Unmarshal(trimmed, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse bd issue: %w", err)
	}
	return []Issue{issue}, nil
}
