package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tractorlog/internal/aggregate"
	applog "tractorlog/internal/log"
	"tractorlog/internal/services"
)

const reportTimeout = 2 * time.Minute

// ReportBuilder produces the summary document of the matching entries.
type ReportBuilder interface {
	PDF(ctx context.Context, spec aggregate.FilterSpec) (services.Export, error)
}

// ReportScheduler writes a summary of every entry into a directory on a
// cron schedule.
type ReportScheduler struct {
	reports  ReportBuilder
	dir      string
	schedule cron.Schedule
	spec     string

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewReportScheduler parses a standard five field cron expression.
func NewReportScheduler(reports ReportBuilder, dir, schedule string) (*ReportScheduler, error) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse report schedule %q: %w", schedule, err)
	}
	return &ReportScheduler{
		reports:  reports,
		dir:      dir,
		schedule: sched,
		spec:     schedule,
	}, nil
}

// Start schedules the export. Returns an error if already running.
func (s *ReportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("report scheduler is already running")
	}

	s.cron = cron.New()
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		runCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()
		if _, err := s.RunOnce(runCtx); err != nil {
			slog.ErrorContext(runCtx, "Scheduled report failed",
				applog.FieldComponent, applog.ComponentScheduler,
				applog.FieldError, err)
		}
	}))
	s.cron.Start()
	s.running = true

	slog.InfoContext(ctx, "Report scheduler started",
		applog.FieldComponent, applog.ComponentScheduler,
		"schedule", s.spec,
		"dir", s.dir,
		"next_run", s.schedule.Next(time.Now()).Format(time.RFC3339))
	return nil
}

// Stop waits for a running export to finish or ctx to end.
func (s *ReportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	done := s.cron.Stop()
	s.running = false
	s.mu.Unlock()

	select {
	case <-done.Done():
		slog.InfoContext(ctx, "Report scheduler stopped gracefully",
			applog.FieldComponent, applog.ComponentScheduler)
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Report scheduler stop timed out",
			applog.FieldComponent, applog.ComponentScheduler)
		return ctx.Err()
	}
}

// IsRunning returns whether the schedule is active
func (s *ReportScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce builds the report of every entry and writes it under the
// scheduler's directory. It returns the written path.
func (s *ReportScheduler) RunOnce(ctx context.Context) (string, error) {
	exp, err := s.reports.PDF(ctx, aggregate.FilterSpec{})
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(s.dir, exp.Filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, exp.Data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("move report into place: %w", err)
	}

	slog.InfoContext(ctx, "Report written",
		applog.FieldComponent, applog.ComponentScheduler,
		applog.FieldOperation, applog.OpExport,
		"path", path,
		"bytes", len(exp.Data))
	return path, nil
}
