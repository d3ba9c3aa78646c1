package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
)

const app = "resumectl"

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "resumectl imports resumes into the screener store and exports filtered views",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// setup loads the environment configuration and builds the logger. Flags
// override LOG_DEBUG and LOG_JSON.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()

	zlog, err := logger.New(jsonLog || cfg.Log.JSON, debug || cfg.Log.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, zlog, nil
}
