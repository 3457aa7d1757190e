// Package prompt builds the prompts sent through the LLM boundary for each
// pipeline step.
package prompt

import "fmt"

// Research constructs the prompt for the research step. The agent is asked
// to write its findings to a markdown file and report the path back in a
// JSON envelope the executor can extract.
func Research(topic, additionalContext string) string {
	ctx := ""
	if additionalContext != "" {
		ctx = fmt.Sprintf("\n## Additional Context\n\n%s\n", additionalContext)
	}
	return fmt.Sprintf(`## Research Task

Research the following topic thoroughly. Investigate the codebase, prior
art, and constraints, then write a research document.

%s
%s
## Instructions

1. Write your findings to a markdown file under .groundwork/research/
2. Cover: current state, constraints, alternatives considered, recommendation
3. When done, respond with ONLY a JSON object of the form:
   {"path": "<path to the research file you wrote>"}`, topic, ctx)
}

// Planning constructs the prompt for the planning step.
func Planning(researchPath, additionalContext string) string {
	ctx := ""
	if additionalContext != "" {
		ctx = fmt.Sprintf("\n## Additional Context\n\n%s\n", additionalContext)
	}
	return fmt.Sprintf(`## Planning Task

Read the research document at %s and produce an implementation plan.
%s
## Instructions

1. Write the plan to a markdown file under .groundwork/plans/
2. The plan must list concrete, ordered units of work with acceptance criteria
3. When done, respond with ONLY a JSON object of the form:
   {"path": "<path to the plan file you wrote>"}`, researchPath, ctx)
}

// Decompose constructs the prompt for the phase-decomposition step. The
// agent splits the plan into ordered phase files.
func Decompose(planPath, phasesDir string) string {
	return fmt.Sprintf(`## Phase Decomposition Task

Read the plan at %s and split it into sequential implementation phases.

## Instructions

1. Write one markdown file per phase under %s, named NN-<slug>.md where NN
   is the 1-based phase number (e.g. 01-setup.md, 02-core.md)
2. An optional 00-overview.md may summarize the whole sequence
3. Each phase must be independently implementable once its predecessor is done
4. When done, respond with ONLY a JSON object of the form:
   {"phase_files": ["<path>", "<path>", ...]}
   listing the files in execution order`, planPath, phasesDir)
}
