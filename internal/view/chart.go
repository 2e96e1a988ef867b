package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/TimelordUK/sigview/internal/window"
	"github.com/TimelordUK/sigview/pkg/tsformat"
)

// Chart draws a window of the series as a braille line plot.
// It knows nothing about files or the pipeline; it only renders a View.
type Chart struct {
	// Dimensions, including the label line
	width  int
	height int

	showAxis bool

	// Styling
	labelStyle  lipgloss.Style
	cursorStyle lipgloss.Style
	emptyStyle  lipgloss.Style
}

// NewChart creates a new chart
func NewChart(width, height int) *Chart {
	return &Chart{
		width:       width,
		height:      height,
		labelStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		emptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}

// SetSize updates chart dimensions
func (c *Chart) SetSize(width, height int) {
	c.width = max(1, width)
	c.height = max(2, height)
}

// SetShowAxis toggles the canvas axis
func (c *Chart) SetShowAxis(show bool) {
	c.showAxis = show
}

// Size returns the chart dimensions
func (c *Chart) Size() (int, int) {
	return c.width, c.height
}

// Render returns the plot followed by a start/cursor/end label line
func (c *Chart) Render(v window.View) string {
	plotHeight := max(1, c.height-1)

	if len(v.Points) == 0 {
		return c.renderEmpty(plotHeight) + "\n" + c.labels(v)
	}

	values := make([]float64, len(v.Points))
	for i, p := range v.Points {
		values[i] = p.Amplitude
	}

	canvas := plot.NewCanvas(c.width, plotHeight)
	canvas.NumDataPoints = max(2, len(values))
	canvas.ShowAxis = c.showAxis
	canvas.LineColors = []plot.Color{lineColor()}
	canvas.Fill([][]float64{values})

	return canvas.String() + "\n" + c.labels(v)
}

func (c *Chart) renderEmpty(height int) string {
	msg := c.emptyStyle.Render("no samples in this window")
	pad := strings.Repeat(" ", c.width)

	var b strings.Builder
	for i := 0; i < height; i++ {
		if i > 0 {
			b.WriteString("\n")
		}
		if i == height/2 {
			b.WriteString(lipgloss.PlaceHorizontal(c.width, lipgloss.Center, msg))
			continue
		}
		b.WriteString(pad)
	}
	return b.String()
}

// labels spreads the window start, the cursor and the window end over the
// chart width
func (c *Chart) labels(v window.View) string {
	left := tsformat.FormatTick(v.Start)
	mid := "▲ " + tsformat.FormatTick(v.Cursor)
	right := tsformat.FormatTick(v.End)

	gap := c.width - (len(left) + lipgloss.Width(mid) + len(right))
	if gap < 2 {
		return c.cursorStyle.Render(mid)
	}
	leftGap := gap / 2
	rightGap := gap - leftGap

	return c.labelStyle.Render(left) +
		strings.Repeat(" ", leftGap) +
		c.cursorStyle.Render(mid) +
		strings.Repeat(" ", rightGap) +
		c.labelStyle.Render(right)
}

func lineColor() plot.Color {
	if lipgloss.DefaultRenderer().HasDarkBackground() {
		return plot.Red
	}
	return plot.Black
}
