package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"salarydash/internal/api"
	"salarydash/internal/config"
	"salarydash/internal/engine"
	"salarydash/internal/log"
	"salarydash/internal/models"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger := log.New(cfg.LoggerConfig())
	log.SetDefault(logger)
	loadLog := logger.WithComponent(log.ComponentLoader)
	opts := cfg.AggregateOptions()

	load := func(ctx context.Context) models.Snapshot {
		ctx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()

		loadLog.Info("Loading data", log.FieldSource, cfg.DataSource, log.FieldPolicy, opts.Policy.String())
		s := engine.LoadSnapshot(ctx, cfg.DataSource, opts)
		if s.State == models.StateFailed {
			loadLog.Error("Load failed", log.FieldSource, cfg.DataSource, log.FieldError, s.Err)
			return s
		}
		loadLog.Info("Load complete",
			log.FieldYears, len(s.Aggregation.Years),
			log.FieldValidRows, s.Aggregation.ValidRows,
			log.FieldSkipped, s.Aggregation.SkippedCount,
			log.FieldDuration, s.Duration.Milliseconds())
		return s
	}

	// 1. The API goes live in the loading state and answers 503 until data lands
	h := api.NewHandler(cfg.DataSource, load, logger)
	e := api.NewServer(h, cfg.CORSOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// 2. Load and aggregate in the background
	g.Go(func() error {
		h.Reload(gctx)
		return nil
	})

	// 3. Serve
	g.Go(func() error {
		logger.Info("Server ready (data loading in background)", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 4. Shut down on signal or server failure
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
}
