package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tractorlog/internal/amqp"
	"tractorlog/internal/auth"
	"tractorlog/internal/cache"
	"tractorlog/internal/cli"
	"tractorlog/internal/config"
	apphttp "tractorlog/internal/http"
	applog "tractorlog/internal/log"
	"tractorlog/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)
	if err := cfg.Validate(); err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx := context.Background()
	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize record store", err, applog.FieldBackend, cfg.DataBackend)
	}

	// A nil interface, not a nil *amqp.Client, keeps publishing disabled.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		events = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	table := auth.DefaultTable()
	if cfg.CredentialsFile != "" {
		if table, err = auth.LoadTable(cfg.CredentialsFile); err != nil {
			cli.Fatal(logger, "Failed to load credentials", err, "path", cfg.CredentialsFile)
		}
	} else {
		logger.Warn("Using built-in demo credentials - set CREDENTIALS_FILE for production")
	}
	sessions := auth.NewSessions(cfg.SessionTTL, auth.DefaultMaxSessions)
	janitor := cache.NewJanitor(5*time.Minute, logger.Logger)
	janitor.Watch(sessions.Sweeper())
	janitor.Start()

	entries, reports := cli.BuildServices(cfg, res, events)
	srv, err := apphttp.NewServer(":"+cfg.Port, entries, reports, auth.NewGate(table, sessions), logger)
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		janitor.Stop()
		if err := entries.Close(); err != nil {
			logger.Error("Failed to release resources", applog.FieldError, err)
		}
	})

	logger.Info("Starting tractorlog server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"users", table.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
