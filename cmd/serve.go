package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backsync/internal/db"
	"backsync/internal/logger"
	"backsync/internal/repository"
	"backsync/internal/server"
	"backsync/internal/status"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		var histRepo *repository.HistoryRepository
		if gdb, err := db.Open(cfg.DBPath); err != nil {
			logger.Log.Warn("run history unavailable", zap.Error(err))
		} else {
			histRepo = repository.NewHistoryRepository(gdb)
		}

		srv := server.New(
			cfg,
			status.NewStore(cfg.StatusFile, logger.Log),
			histRepo,
			logger.Log,
		)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
