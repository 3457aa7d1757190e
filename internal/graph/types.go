// Package graph builds the dependency graph of tracked work items from an
// ordered phase-file list and answers blocked-state queries over arbitrary
// work-item collections.
package graph

import (
	"fmt"

	"github.com/jywlabs/groundwork/internal/tracker"
)

// WorkItem is a tracked unit of work with its dependency edges. The blocked
// computation accepts any collection of these, not only the linear chains
// the builder produces.
type WorkItem struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Order     int            `json:"order,omitempty"`
	Priority  int            `json:"priority,omitempty"`
	Status    tracker.Status `json:"status"`
	DependsOn []string       `json:"depends_on,omitempty"`
}

// PhaseIssue records the outcome of creating one phase work item. IssueID is
// empty when the creation call failed; Err carries the reason.
type PhaseIssue struct {
	Order    int    `json:"order"`
	Path     string `json:"artifact_path"`
	Priority int    `json:"priority"`
	IssueID  string `json:"issue_id,omitempty"`
	Err      string `json:"error,omitempty"`
}

// EdgeError records one failed dependency-edge creation.
type EdgeError struct {
	FromOrder int    `json:"from_order"` // the dependent phase
	ToOrder   int    `json:"to_order"`   // the phase it depends on
	Message   string `json:"message"`
}

// BuildResult is the itemized outcome of a tracker integration. Individual
// failures never abort the build; they are recorded here so a retry can be
// scoped to only the missing pieces.
type BuildResult struct {
	EpicID     string       `json:"epic_id,omitempty"`
	EpicErr    string       `json:"epic_error,omitempty"`
	Phases     []PhaseIssue `json:"phase_issues"`
	EdgeErrors []EdgeError  `json:"edge_errors,omitempty"`
	SyncErr    string       `json:"sync_error,omitempty"`
}

// Partial reports whether any part of the build failed.
func (r *BuildResult) Partial() bool {
	if r.EpicErr != "" || r.SyncErr != "" || len(r.EdgeErrors) > 0 {
		return true
	}
	for _, p := range r.Phases {
		if p.IssueID == "" {
			return true
		}
	}
	return false
}

// Successes itemizes everything that was created, one line per item. Partial
// failure reports pair this with Failures so the operator can see which ids
// already exist before retrying.
func (r *BuildResult) Successes() []string {
	var out []string
	if r.EpicID != "" {
		out = append(out, "epic created: "+r.EpicID)
	}
	for _, p := range r.Phases {
		if p.IssueID != "" {
			out = append(out, fmt.Sprintf("phase %d %s created: %s", p.Order, p.Path, p.IssueID))
		}
	}
	return out
}

// Failures itemizes everything that went wrong, one line per failure.
func (r *BuildResult) Failures() []string {
	var out []string
	if r.EpicErr != "" {
		out = append(out, "epic: "+r.EpicErr)
	}
	for _, p := range r.Phases {
		if p.IssueID == "" {
			out = append(out, "phase "+p.Path+": "+p.Err)
		}
	}
	for _, e := range r.EdgeErrors {
		out = append(out, fmt.Sprintf("edge phase %d -> phase %d: %s", e.FromOrder, e.ToOrder, e.Message))
	}
	if r.SyncErr != "" {
		out = append(out, "sync: "+r.SyncErr)
	}
	return out
}
