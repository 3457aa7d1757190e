package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jywlabs/groundwork/internal/checkpoint"
	"github.com/jywlabs/groundwork/internal/session"
	"github.com/jywlabs/groundwork/internal/ui"
)

// StepResult is the envelope a step execution returns: exactly one of
// Output or Err is set.
type StepResult struct {
	Output *StepOutput
	Err    *StepError
}

// StepRunner executes a single named step given the run's inputs. The
// controller owns sequencing and checkpointing; the runner owns nothing but
// the step itself.
type StepRunner interface {
	RunStep(ctx context.Context, s Step, run *Run) StepResult
}

// Controller is the pipeline state machine: it sequences steps, consults the
// checkpoint store before running, and persists a checkpoint after every
// terminal step outcome.
type Controller struct {
	store   *checkpoint.Store
	policy  checkpoint.Policy
	runner  StepRunner
	display *ui.Display      // nil for silent operation
	audit   *session.Logger  // nil to skip audit logging
}

// NewController wires the state machine over its collaborators.
func NewController(store *checkpoint.Store, policy checkpoint.Policy, runner StepRunner, display *ui.Display, audit *session.Logger) *Controller {
	return &Controller{
		store:   store,
		policy:  policy,
		runner:  runner,
		display: display,
		audit:   audit,
	}
}

// Resumable lists checkpoints the lifecycle policy considers resumable, most
// recently written first.
func (c *Controller) Resumable() ([]checkpoint.Meta, error) {
	metas, err := c.store.List()
	if err != nil {
		return nil, err
	}
	var out []checkpoint.Meta
	for _, m := range metas {
		if c.policy.IsResumable(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Load reads the checkpointed run for runID. A corrupt checkpoint is
// surfaced as ErrCorruptCheckpoint and is never auto-deleted; the operator
// must explicitly discard or repair it.
func (c *Controller) Load(runID string) (*Run, error) {
	var run Run
	if _, err := c.store.Read(runID, &run); err != nil {
		var corrupt *checkpoint.CorruptError
		if errors.As(err, &corrupt) {
			return nil, &StepError{Kind: ErrCorruptCheckpoint, Message: corrupt.Error()}
		}
		return nil, err
	}
	if run.Outputs == nil {
		run.Outputs = make(map[Step]*StepOutput)
	}
	return &run, nil
}

// Discard removes the checkpoint for runID. Discarding a missing checkpoint
// is logged, not an error.
func (c *Controller) Discard(runID string) error {
	err := c.store.Delete(runID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		c.infof("no checkpoint for run %s\n", runID)
		return nil
	}
	return err
}

// Execute drives the run from its current step to completion. After every
// step's terminal outcome a checkpoint is written; on failure the run stays
// at the failed step so a later resume retries exactly that step with the
// same inputs. Cancelling the context checkpoints the current state first.
func (c *Controller) Execute(ctx context.Context, run *Run) error {
	for run.Step != StepDone {
		select {
		case <-ctx.Done():
			if err := c.save(run); err != nil {
				return fmt.Errorf("failed to save checkpoint on cancellation: %w", err)
			}
			c.auditLog("pipeline", "cancelled at "+string(run.Step))
			return ctx.Err()
		default:
		}

		s := run.Step
		c.infof("   Step: %s\n", s)

		if verr := run.ValidateInputs(s); verr != nil {
			run.Fail(verr)
			if err := c.save(run); err != nil {
				return fmt.Errorf("step %s not attempted: %w (also failed to save checkpoint: %v)", s, verr, err)
			}
			c.auditLog("step:"+string(s), "missing input: "+verr.Message)
			return fmt.Errorf("step %s not attempted: %w", s, verr)
		}
		run.ClearFailure()

		c.auditLog("step:"+string(s), "started")
		res := c.runner.RunStep(ctx, s, run)
		if res.Err != nil {
			run.Fail(res.Err)
			if err := c.save(run); err != nil {
				return fmt.Errorf("step %s failed: %w (also failed to save checkpoint: %v)", s, res.Err, err)
			}
			c.auditLog("step:"+string(s), "failed: "+string(res.Err.Kind))
			return fmt.Errorf("step %s failed: %w", s, res.Err)
		}

		run.Complete(s, res.Output)
		if err := c.save(run); err != nil {
			return fmt.Errorf("failed to save checkpoint after step %s: %w", s, err)
		}
		c.auditLog("step:"+string(s), "completed")
	}

	// The DONE checkpoint stays on disk until the operator discards it or
	// the retention policy expires it.
	c.auditLog("pipeline", "completed")
	return nil
}

func (c *Controller) save(run *Run) error {
	return c.store.Write(checkpoint.Meta{
		RunID:  run.RunID,
		Step:   string(run.Step),
		Failed: run.Failed,
	}, run)
}

func (c *Controller) infof(format string, args ...any) {
	if c.display != nil {
		c.display.Infof(format, args...)
	}
}

func (c *Controller) auditLog(action, result string) {
	if c.audit == nil {
		return
	}
	// Audit failures must not fail the pipeline.
	_ = c.audit.Append(action, result)
}
