// Package main implements the entry point for the OpenBank API server,
// a multi-currency banking backend with accounts, cards, transfers and
// currency conversion.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openbank/openbank-api/internal/config"
	"github.com/openbank/openbank-api/internal/platform/logger"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal before the server is forced down.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Keep the rate cache warm for the lifetime of the process.
	go app.rates.Run(ctx, cfg.Rates.RefreshInterval)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		appLogger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		}
	}

	appLogger.Info("server stopped")
}
