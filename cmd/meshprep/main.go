// Package main is the entry point for the batch mesh preprocessor.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	meshprep "github.com/SurajWijewickrama/AutoMesh-GGT-VQ"
	"github.com/SurajWijewickrama/AutoMesh-GGT-VQ/internal/config"
	"github.com/SurajWijewickrama/AutoMesh-GGT-VQ/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("starting batch",
		zap.String("input", cfg.InputFolder),
		zap.String("output", cfg.OutputFolder),
		zap.Int("target_vertices", cfg.TargetVertexCount))

	pipe := meshprep.NewPipeline(cfg, nil, logger.Log)
	if err := pipe.Run(); err != nil {
		logger.Log.Error("batch failed", zap.Error(err))
		os.Exit(1)
	}
}
