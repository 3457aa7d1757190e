package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jywlabs/groundwork/internal/checkpoint"
	"github.com/jywlabs/groundwork/internal/config"
	"github.com/jywlabs/groundwork/internal/pipeline"
	"github.com/jywlabs/groundwork/internal/session"
	"github.com/jywlabs/groundwork/internal/step"
	"github.com/jywlabs/groundwork/internal/tracker"
	"github.com/jywlabs/groundwork/internal/ui"
)

var (
	runFromFlag       string
	runIDFlag         string
	runResumeFlag     bool
	runFreshFlag      bool
	runUnattendedFlag bool
	runPromptFlag     string
	runResearchFlag   string
	runPlanFlag       string
	runPhasesFlag     []string
	runEpicFlag       string
	runContextFlag    string
	runEngineFlag     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the planning pipeline",
	Long: `Run the planning pipeline from the beginning, from a saved checkpoint, or
from a chosen step.

Before starting, saved checkpoints are checked; an interrupted run can be
resumed at exactly the step where it stopped. Inputs supplied as flags
override artifacts recorded in the checkpoint, so a resume can point a step
at fresher paths.

Examples:
  groundwork run --prompt "offline sync layer" --epic "Offline Sync"
  groundwork run --resume
  groundwork run --from planning --research .groundwork/research/sync.md --epic "Offline Sync"
  groundwork run --from integrate --phases p/01-a.md --phases p/02-b.md --epic "Epic X"`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runFromFlag, "from", "", "Step to (re)start from (research, planning, decompose, integrate)")
	runCmd.Flags().StringVar(&runIDFlag, "run-id", "", "Run identifier (defaults to the resumed run's id, or a new one)")
	runCmd.Flags().BoolVar(&runResumeFlag, "resume", false, "Resume the most recent resumable checkpoint")
	runCmd.Flags().BoolVar(&runFreshFlag, "fresh", false, "Ignore resumable checkpoints and start a new run")
	runCmd.Flags().BoolVar(&runUnattendedFlag, "unattended", false, "Never prompt; pick the most recent checkpoint automatically")
	runCmd.Flags().StringVar(&runPromptFlag, "prompt", "", "Research prompt (required for the research step)")
	runCmd.Flags().StringVar(&runResearchFlag, "research", "", "Existing research artifact path")
	runCmd.Flags().StringVar(&runPlanFlag, "plan", "", "Existing plan artifact path")
	runCmd.Flags().StringArrayVar(&runPhasesFlag, "phases", nil, "Ordered phase file (repeatable)")
	runCmd.Flags().StringVar(&runEpicFlag, "epic", "", "Epic title for tracker integration")
	runCmd.Flags().StringVar(&runContextFlag, "context", "", "Additional context for research/planning")
	runCmd.Flags().StringVarP(&runEngineFlag, "engine", "e", "", "Engine to use (defaults to config)")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	engineName := runEngineFlag
	if engineName == "" {
		engineName = cfg.Engine
	}
	eng, err := newEngine(engineName)
	if err != nil {
		return err
	}

	display := ui.NewDisplay(os.Stdout)
	store := checkpoint.NewStore(cfg.CheckpointDir)
	policy := checkpoint.Policy{TerminalStep: string(pipeline.StepDone)}
	trk := tracker.NewBeads(cfg.BeadsBin, ".", cfg.TrackerTimeout)
	executor := step.NewExecutor(eng, trk, step.Config{
		LLMTimeout: cfg.LLMTimeout,
		PhasesDir:  cfg.PhasesDir,
	}, display, os.Stderr)

	audit, err := session.New(cfg.SessionDir, uuid.NewString())
	if err != nil {
		display.Warnf("session log unavailable: %v\n", err)
		audit = nil
	}

	ctrl := pipeline.NewController(store, policy, executor, display, audit)

	run, err := selectRun(ctrl, store, display)
	if err != nil {
		return err
	}
	applyInputOverrides(run)

	if runFromFlag != "" {
		from, err := pipeline.ParseStep(runFromFlag)
		if err != nil {
			return err
		}
		run.Step = from
		run.ClearFailure()
	}

	display.Header("Groundwork pipeline", fmt.Sprintf("run %s, starting at %s", run.RunID, run.Step))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Execute(ctx, run); err != nil {
		display.Summary(false, fmt.Sprintf("Run %s stopped at %s", run.RunID, run.Step), err.Error())
		return err
	}

	lines := []string{fmt.Sprintf("Run %s complete", run.RunID)}
	if out := run.Outputs[pipeline.StepIntegrate]; out != nil && out.Integration != nil {
		lines = append(lines, fmt.Sprintf("Epic %s with %d phase issue(s) created",
			out.Integration.EpicID, len(out.Integration.Phases)))
	}
	display.Summary(true, lines...)
	return nil
}

// selectRun decides between resuming a checkpoint and starting fresh.
func selectRun(ctrl *pipeline.Controller, store *checkpoint.Store, display *ui.Display) (*pipeline.Run, error) {
	if runIDFlag != "" && !runFreshFlag {
		// Explicit run id: resume it when a checkpoint exists.
		run, err := ctrl.Load(runIDFlag)
		if err == nil {
			announceResume(display, store, run)
			return run, nil
		}
		if _, corrupt := asStepError(err, pipeline.ErrCorruptCheckpoint); corrupt {
			return nil, fmt.Errorf("%w\nuse 'groundwork checkpoints discard %s' to remove it", err, runIDFlag)
		}
		if runResumeFlag {
			return nil, fmt.Errorf("no checkpoint for run %s", runIDFlag)
		}
		return freshRun(runIDFlag), nil
	}

	if runFreshFlag {
		return freshRun(runIDFlag), nil
	}

	resumable, err := ctrl.Resumable()
	if err != nil {
		return nil, err
	}
	if len(resumable) == 0 {
		if runResumeFlag {
			return nil, fmt.Errorf("no resumable checkpoint found")
		}
		return freshRun(runIDFlag), nil
	}

	// Most recent wins in unattended mode; otherwise the operator chooses
	// among the candidates. Without a terminal there is nobody to ask, so
	// start fresh.
	candidate := &resumable[0]
	if !runResumeFlag && !runUnattendedFlag {
		if !term.IsTerminal(os.Stdin.Fd()) {
			return freshRun(""), nil
		}
		candidate = chooseResume(display, resumable)
		if candidate == nil {
			return freshRun(""), nil
		}
	}

	run, err := ctrl.Load(candidate.RunID)
	if err != nil {
		if _, corrupt := asStepError(err, pipeline.ErrCorruptCheckpoint); corrupt {
			return nil, fmt.Errorf("%w\nuse 'groundwork checkpoints discard %s' to remove it", err, candidate.RunID)
		}
		return nil, err
	}
	announceResume(display, store, run)
	return run, nil
}

func freshRun(runID string) *pipeline.Run {
	if runID == "" {
		runID = uuid.NewString()
	}
	return pipeline.NewRun(runID, pipeline.StepResearch, pipeline.Inputs{})
}

// chooseResume enumerates the resumable candidates and lets the operator pick
// one; nil means start a fresh run instead.
func chooseResume(display *ui.Display, metas []checkpoint.Meta) *checkpoint.Meta {
	display.Infof("Found %d resumable run(s):\n", len(metas))
	for i, m := range metas {
		display.Infof("  %d. %s at %s, %d day(s) old\n", i+1, m.RunID, describeMeta(m), metaAgeDays(m))
	}
	fmt.Print("Resume which run? [1, n for a fresh run] ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return nil
	}
	idx, ok := pickCandidate(answer, len(metas))
	if !ok {
		return nil
	}
	return &metas[idx]
}

// pickCandidate maps the operator's answer to a candidate index. Empty input
// or yes picks the most recent; n or anything unrecognized means fresh.
func pickCandidate(answer string, n int) (int, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	switch answer {
	case "", "1", "y", "yes":
		return 0, true
	case "n", "no":
		return 0, false
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx - 1, true
}

// describeMeta renders a checkpoint's state for the operator.
func describeMeta(m checkpoint.Meta) string {
	if m.Corrupt {
		return "(corrupt)"
	}
	if m.Failed {
		return m.Step + " (failed)"
	}
	return m.Step
}

func metaAgeDays(m checkpoint.Meta) int {
	age := time.Since(m.WrittenAt)
	if age < 0 {
		return 0
	}
	return int(age / (24 * time.Hour))
}

func announceResume(display *ui.Display, store *checkpoint.Store, run *pipeline.Run) {
	age, _ := store.AgeDays(run.RunID)
	display.Infof("Resuming run %s from step %s (checkpoint %d day(s) old)\n", run.RunID, run.Step, age)
}

// applyInputOverrides merges supplied flags into the run's inputs. Flags win
// over checkpointed values so a retry can use fresher artifacts.
func applyInputOverrides(run *pipeline.Run) {
	if runPromptFlag != "" {
		run.Inputs.ResearchPrompt = runPromptFlag
	}
	if runResearchFlag != "" {
		run.Inputs.ResearchPath = runResearchFlag
	}
	if runPlanFlag != "" {
		run.Inputs.PlanPath = runPlanFlag
	}
	if len(runPhasesFlag) > 0 {
		run.Inputs.PhaseFiles = runPhasesFlag
	}
	if runEpicFlag != "" {
		run.Inputs.EpicTitle = runEpicFlag
	}
	if runContextFlag != "" {
		run.Inputs.AdditionalContext = runContextFlag
	}
}

// asStepError unwraps a *pipeline.StepError of the given kind.
func asStepError(err error, kind pipeline.ErrorKind) (*pipeline.StepError, bool) {
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) && stepErr.Kind == kind {
		return stepErr, true
	}
	return nil, false
}
