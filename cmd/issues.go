package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jywlabs/groundwork/internal/config"
	"github.com/jywlabs/groundwork/internal/graph"
	"github.com/jywlabs/groundwork/internal/tracker"
)

var (
	issuesStatusFlag  string
	issuesBlockedFlag bool
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List tracked issues with their blocked state",
	Long: `List issues from the tracker and compute which are blocked: an open issue
is blocked when at least one of its dependencies is still open. Closed
issues are never blocked, and dependencies that cannot be resolved do not
block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		trk := tracker.NewBeads(cfg.BeadsBin, ".", cfg.TrackerTimeout)

		issues, err := trk.List(context.Background(), tracker.Status(issuesStatusFlag))
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Println("No issues found.")
			return nil
		}

		items := make([]graph.WorkItem, len(issues))
		for i, iss := range issues {
			items[i] = graph.WorkItem{
				ID:        iss.ID,
				Title:     iss.Title,
				Priority:  iss.Priority,
				Status:    iss.Status,
				DependsOn: iss.DependsOn,
			}
		}
		blocked := graph.Blocked(items, os.Stderr)

		fmt.Printf("%-12s %-8s %-8s %s\n", "ID", "STATUS", "BLOCKED", "TITLE")
		shown := 0
		for _, item := range items {
			if issuesBlockedFlag && !blocked[item.ID] {
				continue
			}
			mark := "no"
			if blocked[item.ID] {
				mark = "yes"
			}
			fmt.Printf("%-12s %-8s %-8s %s\n", item.ID, item.Status, mark, item.Title)
			shown++
		}
		if issuesBlockedFlag && shown == 0 {
			fmt.Println("No blocked issues.")
		}
		return nil
	},
}

func init() {
	issuesCmd.Flags().StringVar(&issuesStatusFlag, "status", "", "Filter by status (open, closed)")
	issuesCmd.Flags().BoolVar(&issuesBlockedFlag, "blocked", false, "Show only blocked issues")
	rootCmd.AddCommand(issuesCmd)
}
