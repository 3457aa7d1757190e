package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStepNext(t *testing.T) {
	tests := []struct {
		step Step
		want Step
	}{
		{StepResearch, StepPlanning},
		{StepPlanning, StepDecompose},
		{StepDecompose, StepIntegrate},
		{StepIntegrate, StepDone},
		{StepDone, StepDone},
	}
	for _, tt := range tests {
		if got := tt.step.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, expected %s", tt.step, got, tt.want)
		}
	}
}

func TestParseStep(t *testing.T) {
	for _, name := range []string{"research", " Planning ", "DECOMPOSE", "integrate"} {
		if _, err := ParseStep(name); err != nil {
			t.Errorf("ParseStep(%q) failed: %v", name, err)
		}
	}
	// "done" is a terminal marker, not a startable step.
	for _, name := range []string{"done", "deploy", ""} {
		if _, err := ParseStep(name); err == nil {
			t.Errorf("ParseStep(%q) should have failed", name)
		}
	}
}

func TestInputsOverrideOutputs(t *testing.T) {
	run := NewRun("run-1", StepResearch, Inputs{})
	run.Outputs[StepResearch] = &StepOutput{ResearchPath: "out/research.md"}
	run.Outputs[StepPlanning] = &StepOutput{PlanPath: "out/plan.md"}
	run.Outputs[StepDecompose] = &StepOutput{PhaseFiles: []string{"out/01.md"}}

	if got := run.ResearchPath(); got != "out/research.md" {
		t.Errorf("ResearchPath = %s", got)
	}

	run.Inputs.ResearchPath = "override/research.md"
	run.Inputs.PlanPath = "override/plan.md"
	run.Inputs.PhaseFiles = []string{"override/01.md", "override/02.md"}

	if got := run.ResearchPath(); got != "override/research.md" {
		t.Errorf("operator override lost: ResearchPath = %s", got)
	}
	if got := run.PlanPath(); got != "override/plan.md" {
		t.Errorf("operator override lost: PlanPath = %s", got)
	}
	if got := run.PhaseFiles(); len(got) != 2 || got[0] != "override/01.md" {
		t.Errorf("operator override lost: PhaseFiles = %v", got)
	}
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()
	research := filepath.Join(dir, "research.md")
	if err := os.WriteFile(research, []byte("# findings"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		step Step
		run  *Run
		ok   bool
	}{
		{"research with prompt", StepResearch,
			NewRun("r", StepResearch, Inputs{ResearchPrompt: "sync layer"}), true},
		{"research blank prompt", StepResearch,
			NewRun("r", StepResearch, Inputs{ResearchPrompt: "  "}), false},
		{"planning with readable artifact", StepPlanning,
			NewRun("r", StepPlanning, Inputs{ResearchPath: research}), true},
		{"planning missing path", StepPlanning,
			NewRun("r", StepPlanning, Inputs{}), false},
		{"planning unreadable artifact", StepPlanning,
			NewRun("r", StepPlanning, Inputs{ResearchPath: filepath.Join(dir, "absent.md")}), false},
		{"decompose with plan", StepDecompose,
			NewRun("r", StepDecompose, Inputs{PlanPath: "plan.md"}), true},
		{"decompose without plan", StepDecompose,
			NewRun("r", StepDecompose, Inputs{}), false},
		{"integrate complete", StepIntegrate,
			NewRun("r", StepIntegrate, Inputs{PhaseFiles: []string{"01.md"}, EpicTitle: "Epic"}), true},
		{"integrate no phases", StepIntegrate,
			NewRun("r", StepIntegrate, Inputs{EpicTitle: "Epic"}), false},
		{"integrate no epic title", StepIntegrate,
			NewRun("r", StepIntegrate, Inputs{PhaseFiles: []string{"01.md"}}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.ValidateInputs(tt.step)
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				if err.Kind != ErrMissingInput {
					t.Errorf("expected missing_input, got %s", err.Kind)
				}
			}
		})
	}
}

func TestCompleteAdvancesAndClearsFailure(t *testing.T) {
	run := NewRun("run-1", StepResearch, Inputs{})
	run.Fail(&StepError{Kind: ErrTimedOut, Message: "llm call timed out"})

	if !run.Failed || run.FailedKind != ErrTimedOut {
		t.Fatalf("failure not recorded: %+v", run)
	}
	// A failed run stays at the same step for retry.
	if run.Step != StepResearch {
		t.Errorf("failed run moved to %s", run.Step)
	}

	run.Complete(StepResearch, &StepOutput{ResearchPath: "r.md"})

	if run.Failed || run.FailedKind != "" || run.FailedMsg != "" {
		t.Errorf("failure record not cleared: %+v", run)
	}
	if run.Step != StepPlanning {
		t.Errorf("run did not advance: %s", run.Step)
	}
	if run.Outputs[StepResearch] == nil || run.Outputs[StepResearch].ResearchPath != "r.md" {
		t.Errorf("output not recorded: %+v", run.Outputs)
	}
}

func TestStepErrorDetails(t *testing.T) {
	err := &StepError{
		Kind:    ErrPartialGraph,
		Message: "tracker integration partially failed",
		Details: []string{"phase 02.md: create failed", "sync: network down"},
	}
	msg := err.Error()
	for _, want := range []string{"partially failed", "phase 02.md", "sync: network down"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}
