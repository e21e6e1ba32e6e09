// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/tractorlog, cmd/tractorlog-worker and cmd/tractorlogctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tractorlog/internal/backend"
	"tractorlog/internal/config"
	applog "tractorlog/internal/log"
	"tractorlog/internal/report"
	"tractorlog/internal/services"
)

// SetupLogger initializes structured logging at the given level and sets
// it as the default logger.
func SetupLogger(level string, component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the configured record store.
func OpenStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.Logger).Create(ctx, bcfg)
}

// BuildServices wires the entry and report services over res. events may
// be nil.
func BuildServices(cfg *config.Config, res *backend.Result, events services.EventPublisher) (*services.EntryService, *services.ReportService) {
	entries := services.NewEntryService(res.Store, events)
	renderer := report.NewPlotRenderer()
	reports := services.NewReportService(entries, renderer, report.NewAssembler(renderer, cfg.BannerPath), cfg.PageSize)
	return entries, reports
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// Fatal logs err and exits the process.
func Fatal(logger *applog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{applog.FieldError, err}, args...)...)
	os.Exit(1)
}
