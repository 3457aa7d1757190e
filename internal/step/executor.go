// Package step executes exactly one named pipeline step per invocation. The
// executor is stateless between invocations and knows nothing about step
// sequencing; that is the controller's job.
package step

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jywlabs/groundwork/internal/engine"
	"github.com/jywlabs/groundwork/internal/graph"
	"github.com/jywlabs/groundwork/internal/pipeline"
	"github.com/jywlabs/groundwork/internal/prompt"
	"github.com/jywlabs/groundwork/internal/tracker"
	"github.com/jywlabs/groundwork/internal/ui"
)

// Config holds executor settings. Explicit configuration, no process-wide
// mutable state.
type Config struct {
	LLMTimeout time.Duration // bound per LLM step invocation
	PhasesDir  string        // directory the decompose step writes phases into
}

// Executor runs single pipeline steps against the LLM and tracker
// boundaries.
type Executor struct {
	engine  engine.Engine
	builder *graph.Builder
	cfg     Config
	display *ui.Display
	logger  io.Writer
}

// NewExecutor creates an executor over the given boundaries.
func NewExecutor(eng engine.Engine, trk tracker.Client, cfg Config, display *ui.Display, logger io.Writer) *Executor {
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = engine.DefaultTimeout
	}
	if cfg.PhasesDir == "" {
		cfg.PhasesDir = ".groundwork/phases"
	}
	return &Executor{
		engine:  eng,
		builder: graph.NewBuilder(trk, logger),
		cfg:     cfg,
		display: display,
		logger:  logger,
	}
}

// RunStep executes one step. All external-call and parse failures come back
// in the result envelope; nothing escapes as a panic.
func (e *Executor) RunStep(ctx context.Context, s pipeline.Step, run *pipeline.Run) pipeline.StepResult {
	switch s {
	case pipeline.StepResearch:
		return e.runResearch(ctx, run)
	case pipeline.StepPlanning:
		return e.runPlanning(ctx, run)
	case pipeline.StepDecompose:
		return e.runDecompose(ctx, run)
	case pipeline.StepIntegrate:
		return e.runIntegrate(ctx, run)
	default:
		return failure(pipeline.ErrMissingInput, fmt.Sprintf("unknown step: %s", s))
	}
}

func (e *Executor) runResearch(ctx context.Context, run *pipeline.Run) pipeline.StepResult {
	res, stepErr := e.invoke(ctx, "Researching...", prompt.Research(run.Inputs.ResearchPrompt, run.Inputs.AdditionalContext))
	if stepErr != nil {
		return pipeline.StepResult{Err: stepErr}
	}

	path := extractPath(res.Output)
	if path == "" {
		return failure(pipeline.ErrOutputNotParseable, "research call succeeded but no artifact path could be extracted from its output")
	}
	return pipeline.StepResult{Output: &pipeline.StepOutput{ResearchPath: path}}
}

func (e *Executor) runPlanning(ctx context.Context, run *pipeline.Run) pipeline.StepResult {
	res, stepErr := e.invoke(ctx, "Planning...", prompt.Planning(run.ResearchPath(), run.Inputs.AdditionalContext))
	if stepErr != nil {
		return pipeline.StepResult{Err: stepErr}
	}

	path := extractPath(res.Output)
	if path == "" {
		return failure(pipeline.ErrOutputNotParseable, "planning call succeeded but no artifact path could be extracted from its output")
	}
	return pipeline.StepResult{Output: &pipeline.StepOutput{PlanPath: path}}
}

func (e *Executor) runDecompose(ctx context.Context, run *pipeline.Run) pipeline.StepResult {
	res, stepErr := e.invoke(ctx, "Decomposing plan into phases...", prompt.Decompose(run.PlanPath(), e.cfg.PhasesDir))
	if stepErr != nil {
		return pipeline.StepResult{Err: stepErr}
	}

	files := extractPhaseFiles(res.Output)
	if len(files) == 0 {
		return failure(pipeline.ErrOutputNotParseable, "decompose call succeeded but no phase files could be extracted from its output")
	}
	return pipeline.StepResult{Output: &pipeline.StepOutput{PhaseFiles: files}}
}

func (e *Executor) runIntegrate(ctx context.Context, run *pipeline.Run) pipeline.StepResult {
	if e.display != nil {
		e.display.Infof("Creating tracker issues for %d phase file(s)\n", len(run.PhaseFiles()))
	}

	result := e.builder.Build(ctx, run.PhaseFiles(), run.Inputs.EpicTitle)
	if result.Partial() {
		// Both halves of the outcome ride along in the details: the ids that
		// already exist and the items still missing, so a retry touches only
		// the gaps.
		return pipeline.StepResult{Err: &pipeline.StepError{
			Kind:    pipeline.ErrPartialGraph,
			Message: "tracker integration partially failed; retry can be scoped to the missing items",
			Details: append(result.Successes(), result.Failures()...),
		}}
	}
	return pipeline.StepResult{Output: &pipeline.StepOutput{Integration: result}}
}

// invoke runs one LLM call with the configured step bound and maps the
// engine envelope onto the error taxonomy.
func (e *Executor) invoke(ctx context.Context, spinnerMsg, p string) (engine.Result, *pipeline.StepError) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LLMTimeout)
	defer cancel()

	if e.display != nil {
		e.display.StartSpinner(spinnerMsg)
	}
	res := e.engine.Invoke(ctx, p)
	if e.display != nil {
		e.display.StopSpinner()
	}

	switch {
	case res.TimedOut:
		return res, &pipeline.StepError{Kind: pipeline.ErrTimedOut, Message: res.Error.Error()}
	case res.Unparseable:
		return res, &pipeline.StepError{Kind: pipeline.ErrOutputNotParseable, Message: res.Error.Error()}
	case !res.Success:
		msg := "engine call failed"
		if res.Error != nil {
			msg = res.Error.Error()
		}
		return res, &pipeline.StepError{Kind: pipeline.ErrExternalCallFailed, Message: msg}
	}
	return res, nil
}

func failure(kind pipeline.ErrorKind, msg string) pipeline.StepResult {
	return pipeline.StepResult{Err: &pipeline.StepError{Kind: kind, Message: msg}}
}
