package report

import (
	"bytes"
	"context"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var markColors = map[ChartKind]color.RGBA{
	ChartTractor:  {R: 135, G: 206, B: 235, A: 255}, // skyblue
	ChartLocation: {R: 144, G: 238, B: 144, A: 255}, // lightgreen
	ChartEmployee: {R: 250, G: 128, B: 114, A: 255}, // salmon
	ChartTrend:    {R: 31, G: 119, B: 180, A: 255},
}

// PlotRenderer draws charts as PNG images with gonum/plot.
type PlotRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer returns a renderer producing 8x4 inch images.
func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{Width: 8 * vg.Inch, Height: 4 * vg.Inch}
}

func (r *PlotRenderer) RenderChart(ctx context.Context, data ChartData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = data.Title
	p.X.Label.Text = data.XLabel
	p.Y.Label.Text = data.YLabel

	labels := make([]string, len(data.Points))
	for i, pt := range data.Points {
		labels[i] = pt.Label
	}

	if len(data.Points) > 0 {
		switch data.Mark {
		case MarkLine:
			xys := make(plotter.XYs, len(data.Points))
			for i, pt := range data.Points {
				xys[i].X = float64(i)
				xys[i].Y = pt.Value
			}
			line, points, err := plotter.NewLinePoints(xys)
			if err != nil {
				return nil, fmt.Errorf("line plot: %w", err)
			}
			line.Color = markColors[data.Kind]
			points.Shape = draw.CircleGlyph{}
			points.Color = markColors[data.Kind]
			p.Add(line, points)
		default:
			values := make(plotter.Values, len(data.Points))
			for i, pt := range data.Points {
				values[i] = pt.Value
			}
			bars, err := plotter.NewBarChart(values, vg.Points(24))
			if err != nil {
				return nil, fmt.Errorf("bar chart: %w", err)
			}
			bars.Color = markColors[data.Kind]
			bars.LineStyle.Width = 0
			p.Add(bars)
		}
		p.NominalX(labels...)
		p.Y.Min = 0
	}

	w, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
