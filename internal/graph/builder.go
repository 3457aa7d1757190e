package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/jywlabs/groundwork/internal/tracker"
)

// Issue types used for tracker integration.
const (
	TypeEpic = "epic"
	TypeTask = "task"
)

// Builder converts an ordered phase-file list into a linear precedence chain
// of tracked work items and submits it through the tracker boundary.
type Builder struct {
	tracker tracker.Client
	logger  io.Writer // nil for no logging
}

// NewBuilder creates a builder over the given tracker client.
func NewBuilder(t tracker.Client, logger io.Writer) *Builder {
	return &Builder{tracker: t, logger: logger}
}

// Build creates the epic, one work item per phase (priority = 1-based order,
// overview artifacts filtered out), the linear dependency edges
// phase_i -> phase_{i-1}, and finally requests a tracker sync.
//
// Individual create/edge/sync failures are collected in the result, never
// fatal to the whole build; already-created items are not rolled back.
func (b *Builder) Build(ctx context.Context, phaseFiles []string, epicTitle string) *BuildResult {
	result := &BuildResult{}

	phases := make([]string, 0, len(phaseFiles))
	for _, path := range phaseFiles {
		if IsOverview(path) {
			b.log("skipping overview artifact: %s\n", path)
			continue
		}
		phases = append(phases, path)
	}

	// The epic is created even when the filtered list is empty; an epic
	// with zero phases is a valid, reported outcome.
	epicID, err := b.tracker.Create(ctx, epicTitle, TypeEpic, 0)
	if err != nil {
		result.EpicErr = err.Error()
		b.log("epic creation failed: %v\n", err)
	} else {
		result.EpicID = epicID
		b.log("created epic %s: %s\n", epicID, epicTitle)
	}

	result.Phases = make([]PhaseIssue, 0, len(phases))
	for i, path := range phases {
		order := i + 1
		issue := PhaseIssue{
			Order:    order,
			Path:     path,
			Priority: order,
		}

		id, err := b.tracker.Create(ctx, DeriveTitle(path), TypeTask, order)
		if err != nil {
			issue.Err = err.Error()
			b.log("phase %d creation failed: %v\n", order, err)
		} else {
			issue.IssueID = id
			b.log("created phase %d issue %s: %s\n", order, id, DeriveTitle(path))
		}
		result.Phases = append(result.Phases, issue)
	}

	// Strict linear precedence: each phase depends on exactly the previous
	// one. Edges touching a phase whose creation failed are recorded as
	// edge errors, not retried here.
	for i := 1; i < len(result.Phases); i++ {
		cur, prev := result.Phases[i], result.Phases[i-1]
		if cur.IssueID == "" || prev.IssueID == "" {
			result.EdgeErrors = append(result.EdgeErrors, EdgeError{
				FromOrder: cur.Order,
				ToOrder:   prev.Order,
				Message:   "issue id missing for one endpoint",
			})
			continue
		}
		if err := b.tracker.AddDependency(ctx, cur.IssueID, prev.IssueID); err != nil {
			result.EdgeErrors = append(result.EdgeErrors, EdgeError{
				FromOrder: cur.Order,
				ToOrder:   prev.Order,
				Message:   err.Error(),
			})
			b.log("dependency %s -> %s failed: %v\n", cur.IssueID, prev.IssueID, err)
		}
	}

	if err := b.tracker.Sync(ctx); err != nil {
		result.SyncErr = err.Error()
		b.log("tracker sync failed: %v\n", err)
	}

	return result
}

func (b *Builder) log(format string, args ...any) {
	if b.logger != nil {
		fmt.Fprintf(b.logger, format, args...)
	}
}
