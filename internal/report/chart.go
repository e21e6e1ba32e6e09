// Package report assembles the exported PDF summary and the CSV download
// from a filtered set of log entries.
package report

import (
	"context"
	"errors"
	"fmt"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
)

// ChartKind is one of the fixed aggregate charts of the report.
type ChartKind int

const (
	ChartTractor ChartKind = iota
	ChartLocation
	ChartEmployee
	ChartTrend
)

// Mark is how a chart draws its points.
type Mark int

const (
	MarkBar Mark = iota
	MarkLine
)

// ChartSpec says which grouping and which summed field feed a chart.
type ChartSpec struct {
	Name    string
	Title   string
	XLabel  string
	YLabel  string
	Key     aggregate.KeyFunc
	Measure aggregate.Measure
	Mark    Mark
	// Chronological sorts groups by key instead of first-seen order.
	Chronological bool
}

var chartSpecs = [...]ChartSpec{
	ChartTractor: {
		Name: "tractor", Title: "Tractor Usage", XLabel: "Tractor", YLabel: "Acres",
		Key: aggregate.ByTractor, Measure: aggregate.MeasureAcres, Mark: MarkBar,
	},
	ChartLocation: {
		Name: "location", Title: "Acres by Location", XLabel: "Location", YLabel: "Acres",
		Key: aggregate.ByLocation, Measure: aggregate.MeasureAcres, Mark: MarkBar,
	},
	ChartEmployee: {
		Name: "employee", Title: "Acres by Employee", XLabel: "Employee", YLabel: "Acres",
		Key: aggregate.ByEmployee, Measure: aggregate.MeasureAcres, Mark: MarkBar,
	},
	ChartTrend: {
		Name: "trend", Title: "Daily Cost Trend", XLabel: "Day", YLabel: "Cost",
		Key: aggregate.ByDay, Measure: aggregate.MeasureCost, Mark: MarkLine,
		Chronological: true,
	},
}

// ChartKinds lists every chart in report order.
func ChartKinds() []ChartKind {
	return []ChartKind{ChartTractor, ChartLocation, ChartEmployee, ChartTrend}
}

// ErrUnknownChart is returned for a kind outside ChartKinds.
var ErrUnknownChart = errors.New("unknown chart")

func (k ChartKind) valid() bool {
	return k >= 0 && int(k) < len(chartSpecs)
}

// Spec returns the mapping entry for k, or false for an unknown kind.
func (k ChartKind) Spec() (ChartSpec, bool) {
	if !k.valid() {
		return ChartSpec{}, false
	}
	return chartSpecs[k], true
}

func (k ChartKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ChartKind(%d)", int(k))
	}
	return chartSpecs[k].Name
}

// ParseChartKind maps a chart name such as "trend" to its kind.
func ParseChartKind(name string) (ChartKind, error) {
	for _, k := range ChartKinds() {
		if chartSpecs[k].Name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownChart, name)
}

// Point is one labelled value of a chart.
type Point struct {
	Label string
	Value float64
}

// ChartData is everything a renderer needs to draw one chart.
type ChartData struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	Mark   Mark
	Points []Point
}

// BuildChart groups entries the way kind requires.
func BuildChart(kind ChartKind, entries []core.LogEntry) (ChartData, error) {
	spec, ok := kind.Spec()
	if !ok {
		return ChartData{}, fmt.Errorf("%w: %s", ErrUnknownChart, kind)
	}
	rows := aggregate.GroupSum(entries, spec.Key)
	if spec.Chronological {
		rows = aggregate.SortRowsByKey(rows)
	}
	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{Label: r.Key, Value: spec.Measure.Of(r)}
	}
	return ChartData{
		Kind:   kind,
		Title:  spec.Title,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
		Mark:   spec.Mark,
		Points: points,
	}, nil
}

// ChartRenderer turns chart data into image bytes.
type ChartRenderer interface {
	RenderChart(ctx context.Context, data ChartData) ([]byte, error)
}

// ImageFormat is the encoding ChartRenderer implementations produce.
const ImageFormat = "PNG"
