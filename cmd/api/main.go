package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tandem/internal/app"
	"tandem/internal/auth"
	"tandem/internal/categorize"
	"tandem/internal/config"
	"tandem/internal/logging"
	"tandem/internal/metrics"
	"tandem/internal/pantry"
	"tandem/internal/router"
	"tandem/internal/shopping"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	// ───────────────────────── METRICS ─────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// ───────────────────────── CATEGORIZER + STORAGE ─────────────────────────
	categorizer, err := app.NewCategorizer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	archiver, err := app.NewArchiver(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// ───────────────────────── SERVICES ─────────────────────────
	authService := auth.NewService(stores.Users)
	shoppingService := shopping.NewService(stores.Meals, stores.Pantry, m, logger)
	fulfillment := pantry.NewFulfillmentService(
		stores.Pantry,
		categorizer,
		archiver,
		cfg.Engine.Fulfillment(),
		m,
		logger,
	)
	worker := categorize.NewWorker(
		stores.Pantry,
		categorizer,
		cfg.Engine.WorkerBatch,
		cfg.Engine.WorkerInterval,
		m,
		logger,
	)

	// ───────────────────────── GIN ─────────────────────────
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.NewRouter(router.Deps{
		Auth:         auth.NewHandler(authService),
		Shopping:     shopping.NewHandler(shoppingService),
		Pantry:       pantry.NewHandler(fulfillment, stores.Pantry),
		Recategorize: categorize.NewHandler(worker),
		Metrics:      m,
		CORSOrigins:  cfg.CORSOrigins,
		Log:          logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ───────────────────────── START ─────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
