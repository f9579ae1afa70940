package cmd

import (
	"fmt"

	"backsync/internal/db"
	"backsync/internal/repository"

	"github.com/spf13/cobra"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent job executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}

		runs, err := repository.NewHistoryRepository(gdb).GetRecent(historyN)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, run := range runs {
			mark := "ok"
			if !run.Success {
				mark = "FAIL"
			}

			fmt.Printf("%-4s [%s] %-10s %-20s %.1fs",
				mark,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.State,
				run.JobName,
				run.Duration,
			)
			if run.ErrMsg != "" {
				fmt.Printf("  %s", run.ErrMsg)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
