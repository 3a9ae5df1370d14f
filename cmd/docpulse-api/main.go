// Package main provides the docpulse upload/analysis API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docpulse/docpulse/internal/analysis"
	"github.com/docpulse/docpulse/internal/bus"
	"github.com/docpulse/docpulse/internal/config"
	"github.com/docpulse/docpulse/internal/detect"
	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/pdf"
	"github.com/docpulse/docpulse/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "docpulse-api",
	})

	logger.Info().
		Str("host", cfg.API.Host).
		Int("port", cfg.API.Port).
		Str("redis", cfg.Redis.Addr).
		Str("upload_dir", cfg.Upload.Dir).
		Msg("Starting docpulse API")

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("Failed to create upload directory")
	}

	// An unreachable bus at boot aborts startup rather than running
	// degraded.
	eventBus, err := bus.New(cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to event bus")
	}
	defer eventBus.Close()

	store := session.NewStore()
	extractor := pdf.NewExtractor(logger)
	detector := analysis.NewDetector(logger)
	runner := detect.NewRunner(store, eventBus, extractor, detector, logger, cfg.Detection.PageDelay)

	router := NewRouter(logger, cfg, store, runner)

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
