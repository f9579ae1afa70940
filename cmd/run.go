package cmd

import (
	"errors"

	"backsync/internal/db"
	"backsync/internal/lock"
	"backsync/internal/logger"
	"backsync/internal/notify"
	"backsync/internal/orchestrator"
	"backsync/internal/repository"
	"backsync/internal/runner"
	"backsync/internal/status"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errBatchFailed = errors.New("one or more sync jobs failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all enabled sync jobs once",
	Long: `Run attempts every enabled job in configuration order, updates the
status document, and exits 1 if any job failed. Intended to be invoked
by an external scheduler such as cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if err := logger.InitWithFile(debug, cfg.LogDir); err != nil {
			return err
		}
		log := logger.Log

		batchLock, err := lock.Acquire(cfg.LockFile)
		if err != nil {
			log.Error("cannot start batch", zap.Error(err))
			return err
		}
		defer batchLock.Release()

		var history orchestrator.HistoryRecorder
		if gdb, err := db.Open(cfg.DBPath); err != nil {
			log.Warn("run history unavailable", zap.Error(err))
		} else {
			history = repository.NewHistoryRepository(gdb)
		}

		orch := orchestrator.New(
			cfg.SyncJobs,
			runner.New(cfg.Settings, log),
			status.NewStore(cfg.StatusFile, log),
			notify.NewMailer(cfg.Settings.Notification, log),
			history,
			log,
		)

		if ok := orch.RunBatch(cmd.Context()); !ok {
			return errBatchFailed
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
