package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
	"tractorlog/internal/report"
)

// FilterOptions are the selector choices offered by the admin filter form.
type FilterOptions struct {
	Employees []string
	Customers []string
	Locations []string
	Tractors  []string
	From      core.Date
	To        core.Date
}

// AdminView is everything the admin dashboard renders for one request.
type AdminView struct {
	Options     FilterOptions
	Filter      aggregate.FilterSpec
	Rows        []core.LogEntry
	Page        int
	TotalPages  int
	Matched     int
	Totals      aggregate.Totals
	PerTractor  []aggregate.AggregateRow
	PerEmployee []aggregate.AggregateRow
	Unavailable bool
}

// Export is a generated download.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService answers the admin dashboard and builds the exports.
type ReportService struct {
	entries   *EntryService
	assembler *report.Assembler
	renderer  report.ChartRenderer
	pageSize  int
	now       func() time.Time
}

func NewReportService(entries *EntryService, renderer report.ChartRenderer, assembler *report.Assembler, pageSize int) *ReportService {
	if pageSize < 1 {
		pageSize = aggregate.DefaultPageSize
	}
	return &ReportService{
		entries:   entries,
		assembler: assembler,
		renderer:  renderer,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

// Admin filters every entry with spec, sorts the match newest first and
// returns the requested page along with totals and grouped views.
func (s *ReportService) Admin(ctx context.Context, spec aggregate.FilterSpec, page int) (AdminView, error) {
	snap, err := s.entries.Snapshot(ctx)
	if err != nil {
		return AdminView{}, err
	}

	matched := aggregate.Filter(snap.Entries, spec)
	sorted := aggregate.SortByDateDesc(matched)
	page = aggregate.ClampPage(len(sorted), s.pageSize, page)

	return AdminView{
		Options:     optionsFor(snap.Entries),
		Filter:      spec,
		Rows:        aggregate.Paginate(sorted, s.pageSize, page),
		Page:        page,
		TotalPages:  aggregate.TotalPages(len(sorted), s.pageSize),
		Matched:     len(matched),
		Totals:      aggregate.ComputeTotals(matched),
		PerTractor:  aggregate.SortRowsByKey(aggregate.GroupSum(matched, aggregate.ByTractor)),
		PerEmployee: aggregate.SortRowsByKey(aggregate.GroupSum(matched, aggregate.ByEmployee)),
		Unavailable: snap.Unavailable,
	}, nil
}

func optionsFor(entries []core.LogEntry) FilterOptions {
	from, to, _ := aggregate.DateBounds(entries)
	return FilterOptions{
		Employees: aggregate.Distinct(entries, aggregate.ByEmployee),
		Customers: aggregate.Distinct(entries, aggregate.ByCustomer),
		Locations: aggregate.Distinct(entries, aggregate.ByLocation),
		Tractors:  aggregate.Distinct(entries, aggregate.ByTractor),
		From:      from,
		To:        to,
	}
}

// Filtered loads the entries matching spec in store order. Unlike the
// dashboard, an unreadable store is an error here.
func (s *ReportService) Filtered(ctx context.Context, spec aggregate.FilterSpec) ([]core.LogEntry, error) {
	all, err := s.entries.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return aggregate.Filter(all, spec), nil
}

// PDF builds the summary document of the entries matching spec.
func (s *ReportService) PDF(ctx context.Context, spec aggregate.FilterSpec) (Export, error) {
	entries, err := s.Filtered(ctx, spec)
	if err != nil {
		return Export{}, err
	}
	data, err := s.assembler.Build(ctx, entries, aggregate.ComputeTotals(entries))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build summary report",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldOperation, applog.OpRender,
			applog.FieldCount, len(entries),
			applog.FieldError, err)
		return Export{}, err
	}
	return Export{
		Filename:    report.Filename(s.now()),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// CSV builds the spreadsheet export of the entries matching spec.
func (s *ReportService) CSV(ctx context.Context, spec aggregate.FilterSpec) (Export, error) {
	entries, err := s.Filtered(ctx, spec)
	if err != nil {
		return Export{}, err
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, entries); err != nil {
		return Export{}, fmt.Errorf("write csv: %w", err)
	}
	return Export{
		Filename:    report.CSVFilename,
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

// Chart renders one dashboard chart of the entries matching spec. An
// unreadable store is an error, as for the exports.
func (s *ReportService) Chart(ctx context.Context, kind report.ChartKind, spec aggregate.FilterSpec) ([]byte, error) {
	entries, err := s.Filtered(ctx, spec)
	if err != nil {
		return nil, err
	}
	data, err := report.BuildChart(kind, entries)
	if err != nil {
		return nil, err
	}
	img, err := s.renderer.RenderChart(ctx, data)
	if err != nil {
		return nil, &core.RenderError{Stage: "chart:" + kind.String(), Err: err}
	}
	return img, nil
}

// WriteSummary prints the totals lines of the entries matching spec.
func (s *ReportService) WriteSummary(ctx context.Context, w io.Writer, spec aggregate.FilterSpec) error {
	entries, err := s.Filtered(ctx, spec)
	if err != nil {
		return err
	}
	for _, line := range report.SummaryLines(aggregate.ComputeTotals(entries)) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
