package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
)

const (
	// MaxTableRows caps the entry table of the document.
	MaxTableRows = 50

	truncatedMarker = "... Table truncated to 50 rows ..."
	footerText      = "Tractor Logger | Page %d"
	fontFamily      = "Helvetica"
	rowHeight       = 8.0
	lineHeight      = 10.0
)

// TableHeader names the entry table columns, one per LogEntry field.
var TableHeader = []string{"Date", "Customer", "Location", "Tractor", "Acres", "Cost", "Employee"}

// Assembler builds the summary document. Sections are always laid out in
// the same order: banner, summary, one page per chart, entry table.
type Assembler struct {
	renderer   ChartRenderer
	bannerPath string
	now        func() time.Time
}

// NewAssembler returns an assembler drawing charts with renderer. An empty
// or missing bannerPath leaves the banner out.
func NewAssembler(renderer ChartRenderer, bannerPath string) *Assembler {
	return &Assembler{renderer: renderer, bannerPath: bannerPath, now: time.Now}
}

type section struct {
	name string
	draw func(ctx context.Context, pdf *fpdf.Fpdf) error
}

func (a *Assembler) plan(entries []core.LogEntry, totals aggregate.Totals) []section {
	sections := []section{
		{name: "banner", draw: a.drawBanner},
		{name: "summary", draw: func(_ context.Context, pdf *fpdf.Fpdf) error {
			drawSummary(pdf, totals)
			return nil
		}},
	}
	for _, kind := range ChartKinds() {
		sections = append(sections, section{
			name: "chart:" + kind.String(),
			draw: func(ctx context.Context, pdf *fpdf.Fpdf) error {
				data, err := BuildChart(kind, entries)
				if err != nil {
					return err
				}
				return a.drawChart(ctx, pdf, data)
			},
		})
	}
	sections = append(sections, section{name: "table", draw: func(_ context.Context, pdf *fpdf.Fpdf) error {
		drawTable(pdf, buildTable(entries))
		return nil
	}})
	return sections
}

// Build renders the whole document into memory. Any failing section other
// than a missing banner aborts the export and no bytes are returned.
func (a *Assembler) Build(ctx context.Context, entries []core.LogEntry, totals aggregate.Totals) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetCreationDate(a.now())
	pdf.SetTitle("Tractor Summary", false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf(footerText, pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 12)

	for _, s := range a.plan(entries, totals) {
		if err := s.draw(ctx, pdf); err != nil {
			return nil, &core.RenderError{Stage: s.name, Err: err}
		}
		if pdf.Err() {
			return nil, &core.RenderError{Stage: s.name, Err: pdf.Error()}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &core.RenderError{Stage: "output", Err: err}
	}

	slog.InfoContext(ctx, "Report assembled",
		applog.FieldComponent, applog.ComponentReport,
		"entries", len(entries),
		"pages", pdf.PageNo(),
		"bytes", buf.Len())
	return buf.Bytes(), nil
}

func (a *Assembler) drawBanner(ctx context.Context, pdf *fpdf.Fpdf) error {
	if a.bannerPath == "" {
		return nil
	}
	img, err := os.ReadFile(a.bannerPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.DebugContext(ctx, "Banner image missing, skipping",
			applog.FieldComponent, applog.ComponentReport,
			"path", a.bannerPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read banner: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: imageTypeFor(a.bannerPath)}
	pdf.RegisterImageOptionsReader("banner", opts, bytes.NewReader(img))
	pdf.ImageOptions("banner", 10, 10, 180, 0, false, opts, 0, "")
	pdf.SetY(200)
	return nil
}

func imageTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}

func drawSummary(pdf *fpdf.Fpdf, totals aggregate.Totals) {
	pdf.SetFont(fontFamily, "", 12)
	for _, line := range SummaryLines(totals) {
		pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

// SummaryLines formats the three summary lines of a report.
func SummaryLines(totals aggregate.Totals) []string {
	return []string{
		fmt.Sprintf("Total Acres: %.1f", totals.Acres),
		"Total Cost: Rs " + humanize.Comma(totals.Cost),
		fmt.Sprintf("Total Logs: %d", totals.Count),
	}
}

func (a *Assembler) drawChart(ctx context.Context, pdf *fpdf.Fpdf, data ChartData) error {
	if a.renderer == nil {
		return errors.New("no chart renderer configured")
	}
	img, err := a.renderer.RenderChart(ctx, data)
	if err != nil {
		return err
	}

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 12)
	pdf.CellFormat(0, lineHeight, data.Title, "", 1, "L", false, 0, "")

	name := "chart-" + data.Kind.String()
	opts := fpdf.ImageOptions{ImageType: ImageFormat}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	pdf.ImageOptions(name, 10, pdf.GetY(), 180, 0, true, opts, 0, "")
	return nil
}

type table struct {
	header    []string
	rows      [][]string
	truncated bool
}

func buildTable(entries []core.LogEntry) table {
	t := table{header: TableHeader}
	n := min(len(entries), MaxTableRows)
	t.rows = make([][]string, 0, n)
	for _, e := range entries[:n] {
		t.rows = append(t.rows, entryRow(e))
	}
	t.truncated = len(entries) > MaxTableRows
	return t
}

func entryRow(e core.LogEntry) []string {
	return []string{
		e.Date.String(),
		e.Customer,
		e.Location,
		e.Tractor,
		strconv.FormatFloat(e.Acres, 'f', -1, 64),
		strconv.FormatInt(e.Cost, 10),
		e.Employee,
	}
}

func drawTable(pdf *fpdf.Fpdf, t table) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(0, lineHeight, "Log Summary Table", "", 1, "L", false, 0, "")
	pdf.Ln(5)

	colWidth := columnWidth(pdf, len(t.header))

	pdf.SetFont(fontFamily, "B", 9)
	for _, h := range t.header {
		pdf.CellFormat(colWidth, rowHeight, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(rowHeight)

	pdf.SetFont(fontFamily, "", 9)
	for _, row := range t.rows {
		for _, v := range row {
			pdf.CellFormat(colWidth, rowHeight, fitText(pdf, tr, v, colWidth-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(rowHeight)
	}
	if t.truncated {
		pdf.CellFormat(0, rowHeight, truncatedMarker, "", 1, "L", false, 0, "")
	}
}

// columnWidth splits the printable width evenly so the last column ends at
// the right margin.
func columnWidth(pdf *fpdf.Fpdf, cols int) float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return (pageWidth - left - right) / float64(cols)
}

// fitText shortens s with a trailing ellipsis until it fits width and
// returns it in the document encoding.
func fitText(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if pdf.GetStringWidth(tr(s)) <= width {
		return tr(s)
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

// Filename names an exported document after the minute it was produced.
func Filename(t time.Time) string {
	return "tractor_summary_" + t.Format("2006-01-02_1504") + ".pdf"
}
