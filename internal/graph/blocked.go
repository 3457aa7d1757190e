package graph

import (
	"fmt"
	"io"

	"github.com/jywlabs/groundwork/internal/tracker"
)

// Blocked computes the blocked state for every item in the collection: an
// item is blocked iff it is open and at least one of its dependencies
// resolves to a currently-open item. Closed items are never blocked.
//
// The open-id set is built once and each dependency edge is visited once, so
// the computation is O(N + E) over any dependency graph, not only the linear
// chains the builder produces.
//
// Self-loops and dangling dependency ids never block: an unresolvable
// dependency cannot be trusted to keep an item open forever. Dangling ids
// are logged when a logger is supplied.
func Blocked(items []WorkItem, logger io.Writer) map[string]bool {
	known := make(map[string]bool, len(items))
	open := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
		if item.Status != tracker.StatusClosed {
			open[item.ID] = true
		}
	}

	blocked := make(map[string]bool, len(items))
	for _, item := range items {
		blocked[item.ID] = false
		if item.Status == tracker.StatusClosed {
			continue
		}
		for _, dep := range item.DependsOn {
			if dep == item.ID {
				continue // self-loop
			}
			if !known[dep] {
				if logger != nil {
					fmt.Fprintf(logger, "item %s: ignoring unresolvable dependency %q\n", item.ID, dep)
				}
				continue
			}
			if open[dep] {
				blocked[item.ID] = true
				break
			}
		}
	}
	return blocked
}
