// Package main provides the docpulse WebSocket delivery server entrypoint.
// It runs the bus relay and holds the live client connections.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docpulse/docpulse/internal/bus"
	"github.com/docpulse/docpulse/internal/config"
	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/ws"
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
		ServiceName: "docpulse-ws",
	})

	logger.Info().
		Str("host", cfg.WS.Host).
		Int("port", cfg.WS.Port).
		Str("redis", cfg.Redis.Addr).
		Msg("Starting docpulse WebSocket server")

	eventBus, err := bus.New(cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to event bus")
	}
	defer eventBus.Close()

	registry := ws.NewRegistry(logger, cfg.WS.OutboxSize)
	relay := ws.NewRelay(eventBus, registry, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	srv := newServer(logger, registry)

	addr := fmt.Sprintf("%s:%d", cfg.WS.Host, cfg.WS.Port)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.routes(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("WebSocket server listening")
		serverErrors <- httpSrv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	cancel()
	registry.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.WS.GracefulShutdown)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := httpSrv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
