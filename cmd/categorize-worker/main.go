package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tandem/internal/app"
	"tandem/internal/categorize"
	"tandem/internal/config"
	"tandem/internal/logging"
)

// The API runs the same worker in-process. This binary is for deployments
// that want repairs on a separate machine or schedule.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer stores.Close()

	categorizer, err := app.NewCategorizer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("categorizer init failed", zap.Error(err))
	}

	worker := categorize.NewWorker(
		stores.Pantry,
		categorizer,
		cfg.Engine.WorkerBatch,
		cfg.Engine.WorkerInterval,
		nil,
		logger,
	)

	if err := worker.Run(ctx); err != nil {
		logger.Error("worker stopped", zap.Error(err))
	}
}
