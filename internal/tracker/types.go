// Package tracker is the boundary to the external issue tracker. It consumes
// the tracker as a remote capability; it does not reimplement one.
package tracker

import "context"

// Status is the tracker-side state of an issue.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Issue is the normalized shape of a tracked issue as returned by the
// tracker CLI.
type Issue struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    Status   `json:"status"`
	IssueType string   `json:"issue_type,omitempty"`
	Priority  int      `json:"priority,omitempty"`
	DependsOn []string `json:"dependencies,omitempty"`
}

// Client is the consumed tracker capability. Implementations map transport
// failures (non-zero exit, timeout, undecodable output) to returned errors;
// no call panics across this boundary.
type Client interface {
	// Create creates an issue and returns its tracker-assigned id.
	Create(ctx context.Context, title, issueType string, priority int) (string, error)

	// List enumerates issues, optionally filtered by status ("" for all).
	List(ctx context.Context, statusFilter Status) ([]Issue, error)

	// Close closes an issue with an optional reason.
	Close(ctx context.Context, id, reason string) error

	// AddDependency records that issue id depends on dependsOnID.
	AddDependency(ctx context.Context, id, dependsOnID string) error

	// Sync pushes local tracker state to the remote.
	Sync(ctx context.Context) error
}
