package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"tractorlog/internal/amqp"
	"tractorlog/internal/cli"
	"tractorlog/internal/config"
	applog "tractorlog/internal/log"
	"tractorlog/internal/sheets"
	gsheet "tractorlog/internal/sheets/google"
	sheetmem "tractorlog/internal/sheets/memory"
	"tractorlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)
	if err := cfg.Validate(); err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	if cfg.AMQPURL == "" && cfg.ReportSchedule == "" {
		cli.Fatal(logger, "Nothing to do", errors.New("set AMQP_URL to mirror entries or REPORT_SCHEDULE to export reports"))
	}

	logger.Info("Starting tractorlog-worker")
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		var rows sheets.RowWriter
		if cfg.SheetsConfigured() {
			client, err := gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:   cfg.GoogleSpreadsheetID,
				SheetName:       cfg.GoogleSheetName,
				CredentialsJSON: cfg.GoogleCredentialsJSON,
				CredentialsFile: cfg.GoogleCredentialsFile,
			})
			if err != nil {
				cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
			}
			rows = client
			logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		} else {
			rows = sheetmem.New()
			logger.Warn("Google Sheets disabled - mirrored rows are kept in memory only")
		}

		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()

		mirror := worker.NewMirrorWorker(rows)
		g.Go(func() error {
			err := client.ConsumeEntryCreated(gctx, mirror.HandleEntryCreated)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if cfg.ReportSchedule != "" {
		res, err := cli.OpenStore(ctx, logger, cfg)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize record store", err, applog.FieldBackend, cfg.DataBackend)
		}
		entries, reports := cli.BuildServices(cfg, res, nil)
		defer entries.Close()

		scheduler, err := worker.NewReportScheduler(reports, cfg.ReportDir, cfg.ReportSchedule)
		if err != nil {
			cli.Fatal(logger, "Invalid report schedule", err)
		}
		g.Go(func() error {
			if err := scheduler.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			return scheduler.Stop(stopCtx)
		})
	}

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
