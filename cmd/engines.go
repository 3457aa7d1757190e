package cmd

import (
	"github.com/jywlabs/groundwork/internal/engine"

	// Register available engines.
	_ "github.com/jywlabs/groundwork/internal/engine/claude"
)

// newEngine creates an engine by name.
func newEngine(name string) (engine.Engine, error) {
	return engine.New(name)
}
