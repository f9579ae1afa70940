package cmd

import (
	"os"

	"backsync/internal/config"
	"backsync/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg     *config.Config
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "backsync",
	Short:        "Scheduled one-way directory mirroring over rsync",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.Log.Error("failed to load configuration", zap.Error(err))
			return err
		}

		logger.Log.Debug("configuration loaded",
			zap.Int("jobs", len(cfg.SyncJobs)))

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
}
