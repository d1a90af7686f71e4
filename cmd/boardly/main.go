// Package main is the entry point for the Boardly server.
// It exposes the board REST API and the activity websocket stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/common/tracing"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadWithPath(os.Getenv("BOARDLY_CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Boardly exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting Boardly...", zap.Bool("tracing", tracing.Enabled()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cleanups []func() error
	runCleanups := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				log.Error("cleanup failed", zap.Error(err))
			}
		}
	}
	defer runCleanups()

	// 3. Storage
	repos, repoCleanups, err := provideRepositories(ctx, cfg, log)
	cleanups = append(cleanups, repoCleanups...)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	// 4. Event bus
	eventBus, busCleanup, err := provideEventBus(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize event bus: %w", err)
	}
	cleanups = append(cleanups, busCleanup)

	// 5. Services
	services, svcCleanups, err := provideServices(ctx, cfg, log, repos, eventBus)
	cleanups = append(cleanups, svcCleanups...)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}

	// 6. HTTP server
	router := buildRouter(cfg, log, repos, services, eventBus)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	runGracefulShutdown(server, log)
	return nil
}

func runGracefulShutdown(server *http.Server, log *logger.Logger) {
	log.Info("Shutting down Boardly...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracing shutdown error", zap.Error(err))
	}

	log.Info("Boardly stopped")
}
