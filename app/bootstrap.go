package app

import (
	"context"
	"fmt"

	"github.com/bububa/teachassist/config"
	"github.com/bububa/teachassist/logger"
)

// Bootstrap loads the configuration from the environment, initializes the
// default logger and wires the process. Lambda entry points log JSON.
func Bootstrap(ctx context.Context, jsonLogs bool) (*App, error) {
	cfg, err := config.Load(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.SetupLogger(cfg.Log.Level, jsonLogs || cfg.Log.JSON, cfg.Log.AddSource)
	logger.Info("configuration loaded",
		"stage", cfg.Stage,
		"llm", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"embedding", cfg.Embedding.Provider,
		"vectordb", cfg.VectorDB.Engine,
	)
	return New(ctx, cfg)
}
