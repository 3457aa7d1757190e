package graph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jywlabs/groundwork/internal/tracker"
)

func TestBlockedLinearChain(t *testing.T) {
	items := []WorkItem{
		{ID: "a", Status: tracker.StatusClosed},
		{ID: "b", Status: tracker.StatusOpen, DependsOn: []string{"a"}},
		{ID: "c", Status: tracker.StatusOpen, DependsOn: []string{"b"}},
	}

	blocked := Blocked(items, nil)

	assert.False(t, blocked["a"]) // closed, never blocked
	assert.False(t, blocked["b"]) // only dependency is closed
	assert.True(t, blocked["c"])  // depends on open b
}

func TestBlockedClosedItemWithOpenDeps(t *testing.T) {
	items := []WorkItem{
		{ID: "a", Status: tracker.StatusOpen},
		{ID: "b", Status: tracker.StatusClosed, DependsOn: []string{"a"}},
	}

	blocked := Blocked(items, nil)
	assert.False(t, blocked["b"])
}

func TestBlockedSelfLoop(t *testing.T) {
	items := []WorkItem{
		{ID: "a", Status: tracker.StatusOpen, DependsOn: []string{"a"}},
	}

	blocked := Blocked(items, nil)
	assert.False(t, blocked["a"])
}

func TestBlockedDanglingDependency(t *testing.T) {
	var log bytes.Buffer
	items := []WorkItem{
		{ID: "a", Status: tracker.StatusOpen, DependsOn: []string{"ghost"}},
	}

	blocked := Blocked(items, &log)

	assert.False(t, blocked["a"])
	assert.Contains(t, log.String(), "ghost")
}

func TestBlockedMixedDependencies(t *testing.T) {
	items := []WorkItem{
		{ID: "a", Status: tracker.StatusClosed},
		{ID: "b", Status: tracker.StatusOpen},
		// One closed dep, one dangling, one open: open wins.
		{ID: "c", Status: tracker.StatusOpen, DependsOn: []string{"a", "ghost", "b"}},
		// All deps closed or dangling: not blocked.
		{ID: "d", Status: tracker.StatusOpen, DependsOn: []string{"a", "ghost"}},
	}

	blocked := Blocked(items, nil)

	assert.True(t, blocked["c"])
	assert.False(t, blocked["d"])
}

func TestBlockedUnknownStatusTreatedAsOpen(t *testing.T) {
	items := []WorkItem{
		{ID: "a", Status: tracker.Status("in_progress")},
		{ID: "b", Status: tracker.StatusOpen, DependsOn: []string{"a"}},
	}

	blocked := Blocked(items, nil)
	assert.True(t, blocked["b"])
}

func TestBlockedEmpty(t *testing.T) {
	blocked := Blocked(nil, nil)
	assert.Empty(t, blocked)
}
