package cmd

import (
	"fmt"

	"backsync/internal/logger"
	"backsync/internal/status"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest result for each job",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := status.NewStore(cfg.StatusFile, logger.Log).Load()

		if doc.LastRun == nil {
			fmt.Println("no runs recorded yet")
			return nil
		}

		fmt.Printf("last run: %s   total runs: %d\n",
			doc.LastRun.Format("2006-01-02 15:04:05"), doc.TotalRuns)

		if s := doc.LastSummary; s != nil {
			fmt.Printf("last batch: %d successful, %d failed, %d total\n",
				s.Successful, s.Failed, s.Total)
		}
		fmt.Println()

		fmt.Printf("%-20s %-10s %-10s %-4s %s\n",
			"JOB", "STATE", "DURATION", "RC", "LAST RUN")

		for _, job := range cfg.SyncJobs {
			result, ok := doc.Jobs[job.Name]
			if !ok {
				fmt.Printf("%-20s %-10s\n", job.Name, "never run")
				continue
			}

			fmt.Printf("%-20s %-10s %-10.1f %-4d %s\n",
				result.Name,
				result.State,
				result.Duration,
				result.ReturnCode,
				result.StartedAt.Format("2006-01-02 15:04:05"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
