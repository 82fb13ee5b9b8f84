package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/api"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/config"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/core"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/factory"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/logger"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/metrics"
)

func main() {
	// Load configuration from environment
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Debug)
	logger.Info("Starting square server...",
		"port", cfg.Port,
		"mode", cfg.Mode,
		"idle_timeout", cfg.IdleTimeout)

	metrics.Register()

	// Start health server
	var healthServer *api.HealthServer
	if cfg.HealthServerPort != "" {
		healthServer = api.NewHealthServer(":" + cfg.HealthServerPort)
		healthServer.Start()
	}

	// Bind the listener; an in-use port fails here
	server, err := factory.NewServerFactory(cfg).Create()
	if err != nil {
		logger.Fatal("Failed to create server", "error", err)
	}
	logger.Info("Square server listening", "addr", server.Addr().String(), "mode", cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received, closing listener")
		if healthServer != nil {
			healthServer.SetReady(false)
		}
		server.Close()
	}()

	// Mark as ready
	if healthServer != nil {
		healthServer.SetReady(true)
	}

	// Start serving (blocking)
	err = server.Serve()
	if healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		healthServer.Stop(shutdownCtx)
		cancel()
	}
	if err != nil && !errors.Is(err, core.ErrServerClosed) {
		logger.Fatal("Server error", "error", err)
	}
	logger.Info("Square server stopped")
}
