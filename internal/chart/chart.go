// Package chart renders valuation time series as PNG line charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mtlprog/budget/internal/valuation"
)

// ErrTooFewPoints is returned when there is not enough data to draw a line.
var ErrTooFewPoints = errors.New("not enough data points")

// Line is one named series of a chart.
type Line struct {
	Name   string
	Points []valuation.Point
}

// palette cycles over lines in order.
var palette = []drawing.Color{
	drawing.ColorFromHex("2563eb"), // blue-600
	drawing.ColorFromHex("16a34a"), // green-600
	drawing.ColorFromHex("dc2626"), // red-600
	drawing.ColorFromHex("9ca3af"), // gray-400
}

// RenderSeries renders lines on a shared time axis and returns raw PNG bytes.
// Every line needs at least two points.
func RenderSeries(title string, lines ...Line) ([]byte, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no series to render: %w", ErrTooFewPoints)
	}

	series := make([]chart.Series, 0, len(lines))
	for i, l := range lines {
		if len(l.Points) < 2 {
			return nil, fmt.Errorf("series %q: need at least 2, got %d: %w", l.Name, len(l.Points), ErrTooFewPoints)
		}

		xValues := make([]time.Time, len(l.Points))
		yValues := make([]float64, len(l.Points))
		for j, p := range l.Points {
			xValues[j] = p.Date.Time()
			yValues[j], _ = p.Value.Decimal().Float64()
		}

		style := chart.Style{
			StrokeColor: palette[i%len(palette)],
			StrokeWidth: 2,
		}
		if i > 0 {
			style.StrokeWidth = 1.5
		}
		series = append(series, chart.TimeSeries{
			Name:    l.Name,
			Style:   style,
			XValues: xValues,
			YValues: yValues,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: series,
	}

	if len(lines) > 1 {
		graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
