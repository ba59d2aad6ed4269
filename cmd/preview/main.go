// Command preview generates the site once and serves the output root over
// HTTP together with health, readiness and metrics endpoints.
//
// Usage:
//
//	go run ./cmd/preview -skip-build
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/festival-map/internal/adapter/httpadapter"
	"github.com/couchcryptid/festival-map/internal/app"
	"github.com/couchcryptid/festival-map/internal/config"
	"github.com/couchcryptid/festival-map/internal/observability"
)

func main() {
	skipBuild := flag.Bool("skip-build", false, "serve the existing output without running the generator")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.InputPath == "" {
		cfg.InputPath = app.DefaultInputPath
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready sharedobs.ReadinessChecker = app.SiteReadiness{Dir: cfg.OutputDir}
	if !*skipBuild {
		gen, err := app.Build(ctx, cfg, logger, metrics, nil)
		if err != nil {
			logger.Error("failed to build generator", "error", err)
			os.Exit(1) //nolint:gocritic // nothing to release yet
		}
		if _, err := gen.Run(ctx); err != nil {
			logger.Error("generation failed", "error", err)
		}
		if err := gen.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
		ready = gen
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.OutputDir, ready, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
