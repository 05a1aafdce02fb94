package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bububa/teachassist/app"
	"github.com/bububa/teachassist/config"
	"github.com/bububa/teachassist/logger"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "teachassist",
		Short:         "Routes questions to knowledge base, weather and math assistants",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
			if err != nil {
				return err
			}
			logger.SetupLogger(level, logJSON, logSource)
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "path of a YAML configuration file, defaults to $"+config.PathEnv)
	flags.String("log-level", "info", "log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "log in JSON format")
	flags.Bool("log-source", false, "report the source location of log lines")
	root.AddCommand(newServeCommand(), newAskCommand(), newIngestCommand())
	return root
}

// loadApp loads the configuration named by --config and wires the process
func loadApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	// an explicit --log-level wins over LOG_LEVEL
	if !cmd.Flags().Changed("log-level") && cfg.Log.Level != "" {
		_, logJSON, logSource, _ := logger.GetLoggerConfig(cmd)
		logger.SetupLogger(cfg.Log.Level, logJSON || cfg.Log.JSON, logSource || cfg.Log.AddSource)
	}
	return app.New(ctx, cfg)
}
