package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "Groundwork - Resumable planning pipeline for AI coding agents",
	Long: `Groundwork drives a checkpointed planning workflow:
research -> planning -> phase decomposition -> issue tracker integration.

Each step can take minutes and may be interrupted; a checkpoint is written
after every step so a run always resumes at the point of interruption.

Workflow:
  groundwork run --prompt "..." --epic "..."   Run the whole pipeline
  groundwork run --resume                      Resume the latest interrupted run
  groundwork run --from planning --research p  Restart from a given step
  groundwork checkpoints list                  Inspect saved checkpoints
  groundwork checkpoints cleanup               Apply the retention policy`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for engine/tracker credentials; missing file is fine.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
