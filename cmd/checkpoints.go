package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jywlabs/groundwork/internal/checkpoint"
	"github.com/jywlabs/groundwork/internal/config"
)

var (
	cleanupMaxAge   int
	cleanupMaxCount int
	cleanupAll      bool
	cleanupDryRun   bool
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Inspect and manage saved pipeline checkpoints",
}

var checkpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved checkpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		metas, err := store.List()
		if err != nil {
			return err
		}
		if len(metas) == 0 {
			fmt.Println("No checkpoints found.")
			return nil
		}
		fmt.Printf("%-38s %-18s %-8s %s\n", "RUN", "STEP", "AGE", "WRITTEN")
		for _, m := range metas {
			fmt.Printf("%-38s %-18s %-8s %s\n",
				m.RunID, describeMeta(m), fmt.Sprintf("%dd", metaAgeDays(m)), m.WrittenAt.Format(time.RFC3339))
		}
		return nil
	},
}

var checkpointsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old checkpoints per the retention policy",
	Long: `Remove checkpoints that exceed the retention policy: older than --max-age
days, or the oldest beyond --max-count. With --all, every checkpoint is
removed. Use --dry-run to preview what would be removed.

This command is idempotent and safe to run multiple times.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("max-age") {
			cleanupMaxAge = cfg.Retention.MaxAgeDays
		}
		if !cmd.Flags().Changed("max-count") {
			cleanupMaxCount = cfg.Retention.MaxCount
		}

		if cleanupDryRun {
			metas, err := store.List()
			if err != nil {
				return err
			}
			var ids []string
			if cleanupAll {
				for _, m := range metas {
					ids = append(ids, m.RunID)
				}
			} else {
				ids = checkpoint.NeedsCleanup(metas, cleanupMaxCount, cleanupMaxAge, time.Now())
			}
			for _, id := range ids {
				fmt.Printf("Would remove: %s\n", id)
			}
			fmt.Printf("\nWould remove %d checkpoint(s). Run without --dry-run to remove.\n", len(ids))
			return nil
		}

		var report checkpoint.CleanupReport
		if cleanupAll {
			report, err = checkpoint.CleanupAll(store)
		} else {
			report, err = checkpoint.Cleanup(store, cleanupMaxCount, cleanupMaxAge)
		}
		if err != nil {
			return err
		}
		for _, id := range report.Removed {
			fmt.Printf("Removed: %s\n", id)
		}
		for _, delErr := range report.Errors {
			fmt.Printf("Failed: %v\n", delErr)
		}
		fmt.Printf("\nRemoved %d checkpoint(s).\n", len(report.Removed))
		return nil
	},
}

var checkpointsDiscardCmd = &cobra.Command{
	Use:   "discard <run-id>",
	Short: "Discard the checkpoint for one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			if errors.Is(err, checkpoint.ErrNotFound) {
				fmt.Printf("No checkpoint for run %s.\n", args[0])
				return nil
			}
			return err
		}
		fmt.Printf("Discarded checkpoint for run %s.\n", args[0])
		return nil
	},
}

func openStore() (*checkpoint.Store, *config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, err
	}
	return checkpoint.NewStore(cfg.CheckpointDir), cfg, nil
}

func init() {
	checkpointsCleanupCmd.Flags().IntVar(&cleanupMaxAge, "max-age", 30, "Remove checkpoints older than this many days")
	checkpointsCleanupCmd.Flags().IntVar(&cleanupMaxCount, "max-count", 20, "Keep at most this many checkpoints")
	checkpointsCleanupCmd.Flags().BoolVar(&cleanupAll, "all", false, "Remove every checkpoint")
	checkpointsCleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Preview removals without deleting")

	checkpointsCmd.AddCommand(checkpointsListCmd)
	checkpointsCmd.AddCommand(checkpointsCleanupCmd)
	checkpointsCmd.AddCommand(checkpointsDiscardCmd)
	rootCmd.AddCommand(checkpointsCmd)
}
