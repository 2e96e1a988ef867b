package render

import (
	"errors"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/TimelordUK/sigview/internal/config"
	"github.com/TimelordUK/sigview/internal/series"
	"github.com/TimelordUK/sigview/pkg/tsformat"
)

// ErrNoPoints is returned when a window holds nothing to draw
var ErrNoPoints = errors.New("no points in the visible window")

// ChartOptions controls PNG output
type ChartOptions struct {
	Width     int
	Height    int
	LineColor string // hex, with or without '#'
	FillColor string // hex; drawn at 20% opacity
}

// DefaultChartOptions matches the default theme
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:     1024,
		Height:    450,
		LineColor: "#2a9d90",
		FillColor: "#2a9d90",
	}
}

// ThemeChartOptions applies the configured line and fill colours to the
// default chart size
func ThemeChartOptions(theme config.ThemeConfig) ChartOptions {
	opts := DefaultChartOptions()
	if theme.Line != "" {
		opts.LineColor = theme.Line
	}
	if theme.Fill != "" {
		opts.FillColor = theme.Fill
	}
	return opts
}

// WritePNG renders the window [start, end] as an area chart
func WritePNG(w io.Writer, points []series.Point, start, end float64, opts ChartOptions) error {
	if len(points) == 0 {
		return ErrNoPoints
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	lo, hi := points[0].Amplitude, points[0].Amplitude
	for i, p := range points {
		xs[i] = p.Time
		ys[i] = p.Amplitude
		lo = min(lo, p.Amplitude)
		hi = max(hi, p.Amplitude)
	}
	// go-chart rejects a zero-height range
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	if start == end {
		start, end = start-0.0005, end+0.0005
	}

	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 50, Right: 30, Bottom: 40},
		},
		XAxis: chart.XAxis{
			Name:  "Time (s)",
			Range: &chart.ContinuousRange{Min: start, Max: end},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return tsformat.FormatTick(f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "Amplitude",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Signal Amplitude",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: hexColor(opts.LineColor),
					StrokeWidth: 1.5,
					FillColor:   hexColor(opts.FillColor).WithAlpha(51),
				},
			},
		},
	}

	return graph.Render(chart.PNG, w)
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
