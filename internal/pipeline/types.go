package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jywlabs/groundwork/internal/graph"
)

// Step identifies one stage of the planning pipeline.
type Step string

const (
	StepResearch  Step = "research"
	StepPlanning  Step = "planning"
	StepDecompose Step = "decompose"
	StepIntegrate Step = "integrate"
	StepDone      Step = "done"
)

// Sequence is the fixed execution order of the pipeline.
var Sequence = []Step{StepResearch, StepPlanning, StepDecompose, StepIntegrate}

// Next returns the step that follows s in the sequence.
// StepIntegrate advances to StepDone; StepDone stays put.
func (s Step) Next() Step {
	for i, step := range Sequence {
		if step == s && i+1 < len(Sequence) {
			return Sequence[i+1]
		}
	}
	return StepDone
}

// ParseStep converts a user-supplied step name into a Step.
func ParseStep(name string) (Step, error) {
	s := Step(strings.ToLower(strings.TrimSpace(name)))
	for _, step := range Sequence {
		if step == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown step: %q (valid: %s)", name, joinSteps(Sequence))
}

func joinSteps(steps []Step) string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Inputs holds the operator-supplied inputs for a run. Values here take
// precedence over artifacts produced by earlier steps, so a resume can point
// a step at fresher paths.
type Inputs struct {
	ResearchPrompt    string   `json:"research_prompt,omitempty"`
	AdditionalContext string   `json:"additional_context,omitempty"`
	ResearchPath      string   `json:"research_path,omitempty"`
	PlanPath          string   `json:"plan_path,omitempty"`
	PhaseFiles        []string `json:"phase_files,omitempty"`
	EpicTitle         string   `json:"epic_title,omitempty"`
}

// StepOutput holds the artifacts a completed step produced.
type StepOutput struct {
	ResearchPath string             `json:"research_path,omitempty"`
	PlanPath     string             `json:"plan_path,omitempty"`
	PhaseFiles   []string           `json:"phase_files,omitempty"`
	Integration  *graph.BuildResult `json:"integration,omitempty"`
}

// Run is one execution attempt of the whole pipeline. It is mutated only by
// the Controller after each step's terminal outcome.
type Run struct {
	RunID     string               `json:"run_id"`
	Step      Step                 `json:"current_step"`
	Inputs    Inputs               `json:"step_inputs"`
	Outputs   map[Step]*StepOutput `json:"step_outputs"`
	StartedAt time.Time            `json:"started_at"`

	// Failure record for the current step, set when the last attempt at
	// Step did not succeed. Cleared before the step is retried.
	Failed     bool      `json:"failed,omitempty"`
	FailedKind ErrorKind `json:"failed_kind,omitempty"`
	FailedMsg  string    `json:"failed_message,omitempty"`
}

// NewRun creates a fresh run starting at the given step.
func NewRun(runID string, start Step, inputs Inputs) *Run {
	return &Run{
		RunID:     runID,
		Step:      start,
		Inputs:    inputs,
		Outputs:   make(map[Step]*StepOutput),
		StartedAt: time.Now(),
	}
}

// ResearchPath resolves the research artifact for the run: an operator
// override wins over the research step's output.
func (r *Run) ResearchPath() string {
	if r.Inputs.ResearchPath != "" {
		return r.Inputs.ResearchPath
	}
	if out := r.Outputs[StepResearch]; out != nil {
		return out.ResearchPath
	}
	return ""
}

// PlanPath resolves the plan artifact for the run.
func (r *Run) PlanPath() string {
	if r.Inputs.PlanPath != "" {
		return r.Inputs.PlanPath
	}
	if out := r.Outputs[StepPlanning]; out != nil {
		return out.PlanPath
	}
	return ""
}

// PhaseFiles resolves the ordered phase artifact list for the run.
func (r *Run) PhaseFiles() []string {
	if len(r.Inputs.PhaseFiles) > 0 {
		return r.Inputs.PhaseFiles
	}
	if out := r.Outputs[StepDecompose]; out != nil {
		return out.PhaseFiles
	}
	return nil
}

// ValidateInputs checks that every input the given step declares is present
// in the run. Returns nil when the step may execute.
func (r *Run) ValidateInputs(s Step) *StepError {
	switch s {
	case StepResearch:
		if strings.TrimSpace(r.Inputs.ResearchPrompt) == "" {
			return missing("research_prompt is empty (set --prompt)")
		}
	case StepPlanning:
		path := r.ResearchPath()
		if path == "" {
			return missing("research_path is not set (run the research step or pass --research)")
		}
		if _, err := os.Stat(path); err != nil {
			return missing(fmt.Sprintf("research artifact %s is not readable: %v", path, err))
		}
	case StepDecompose:
		if r.PlanPath() == "" {
			return missing("plan_path is not set (run the planning step or pass --plan)")
		}
	case StepIntegrate:
		if len(r.PhaseFiles()) == 0 {
			return missing("phase_files is empty (run the decompose step or pass --phases)")
		}
		if strings.TrimSpace(r.Inputs.EpicTitle) == "" {
			return missing("epic_title is empty (set --epic)")
		}
	}
	return nil
}

func missing(msg string) *StepError {
	return &StepError{Kind: ErrMissingInput, Message: msg}
}

// Complete records a successful step outcome and advances the run.
func (r *Run) Complete(s Step, out *StepOutput) {
	if r.Outputs == nil {
		r.Outputs = make(map[Step]*StepOutput)
	}
	if out != nil {
		r.Outputs[s] = out
	}
	r.ClearFailure()
	r.Step = s.Next()
}

// Fail records a failed step outcome. The run stays at the failed step so a
// resume retries it with the same inputs.
func (r *Run) Fail(err *StepError) {
	r.Failed = true
	r.FailedKind = err.Kind
	r.FailedMsg = err.Error()
}

// ClearFailure resets the failure record before a retry.
func (r *Run) ClearFailure() {
	r.Failed = false
	r.FailedKind = ""
	r.FailedMsg = ""
}
