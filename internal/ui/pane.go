package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TimelordUK/sigview/internal/config"
	"github.com/TimelordUK/sigview/internal/pipeline"
	"github.com/TimelordUK/sigview/internal/render"
	"github.com/TimelordUK/sigview/internal/slice"
	"github.com/TimelordUK/sigview/internal/source"
	"github.com/TimelordUK/sigview/internal/view"
	"github.com/TimelordUK/sigview/internal/window"
)

// loadedMsg carries the outcome of one pipeline run
type loadedMsg struct {
	gen uint64
	res *pipeline.Result
	err error
}

// Pane holds the loaded series and the cursor/granularity view state
type Pane struct {
	chart  *view.Chart
	loader *pipeline.Loader
	config *config.Config
	logger *slog.Logger

	// View state
	cursor      float64
	granularity window.Granularity

	// Progress of the current run
	done  atomic.Int64
	total atomic.Int64

	// Export
	slicer    *slice.Slicer
	lastWrite string
}

// NewPane creates an idle pane
func NewPane(cfg *config.Config, logger *slog.Logger) *Pane {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	gran, err := window.ParseGranularity(cfg.View.DefaultGranularity)
	if err != nil {
		gran = window.Gran10s
	}

	chart := view.NewChart(80, 20)
	chart.SetShowAxis(cfg.View.ShowAxis)

	outDir, err := os.Getwd()
	if err != nil {
		outDir = os.TempDir()
	}

	return &Pane{
		chart:       chart,
		loader:      pipeline.NewLoader(pipeline.OptionsFrom(cfg.Pipeline, logger)),
		config:      cfg,
		logger:      logger,
		granularity: gran,
		slicer:      slice.NewSlicerIn(outDir),
	}
}

// Load validates path and starts a new pipeline run.
// Any previous series or error is discarded; a run still in flight for an
// earlier file is cancelled and its result ignored.
func (p *Pane) Load(path string) (tea.Cmd, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}

	ctx, gen := p.loader.Begin(context.Background(), filepath.Base(path))
	p.done.Store(0)
	p.total.Store(src.Size())

	opts := p.loader.Options()
	opts.Progress = func(done, total int64) {
		if p.loader.Snapshot().Generation == gen {
			p.done.Store(done)
		}
	}

	return func() tea.Msg {
		defer src.Close()
		res, err := pipeline.Process(ctx, src, opts)
		return loadedMsg{gen: gen, res: res, err: err}
	}, nil
}

// Complete applies a finished run; stale generations are dropped
func (p *Pane) Complete(msg loadedMsg) bool {
	ok := p.loader.Complete(msg.gen, msg.res, msg.err)
	if !ok {
		p.logger.Debug("dropped stale load", "gen", msg.gen)
	}
	return ok
}

// Snapshot returns the loader state
func (p *Pane) Snapshot() pipeline.Snapshot {
	return p.loader.Snapshot()
}

// Progress returns the fraction of the current file scanned
func (p *Pane) Progress() float64 {
	total := p.total.Load()
	if total == 0 {
		return 0
	}
	return float64(p.done.Load()) / float64(total)
}

// SetSize sets the chart size
func (p *Pane) SetSize(width, height int) {
	p.chart.SetSize(width, height)
}

// Cursor returns the cursor time
func (p *Pane) Cursor() float64 {
	return p.cursor
}

// SetCursor moves the cursor, clamped to the canvas
func (p *Pane) SetCursor(t float64) {
	p.cursor = window.ClampCursor(t, p.config.View.TotalDuration)
}

// StepCursor moves the cursor by n steps
func (p *Pane) StepCursor(n int) {
	p.SetCursor(p.cursor + float64(n)*p.config.View.CursorStep)
}

// Granularity returns the zoom level
func (p *Pane) Granularity() window.Granularity {
	return p.granularity
}

// SetGranularity sets the zoom level
func (p *Pane) SetGranularity(g window.Granularity) {
	if g.Valid() {
		p.granularity = g
	}
}

// ZoomIn narrows the window
func (p *Pane) ZoomIn() {
	p.granularity = p.granularity.Narrower()
}

// ZoomOut widens the window
func (p *Pane) ZoomOut() {
	p.granularity = p.granularity.Wider()
}

// Window recomputes the visible window for the current state
func (p *Pane) Window() window.View {
	snap := p.loader.Snapshot()
	return window.NewView(snap.Series, p.cursor, p.granularity, p.config.View.TotalDuration)
}

// Render returns the rendered chart
func (p *Pane) Render() string {
	return p.chart.Render(p.Window())
}

// Overview returns a sparkline of the full series
func (p *Pane) Overview(width int) string {
	return view.Overview(p.loader.Snapshot().Series, width, p.config.View.TotalDuration)
}

// ExportCSV writes the visible window to a CSV file
func (p *Pane) ExportCSV() (string, error) {
	snap := p.loader.Snapshot()
	if snap.State != pipeline.StateReady {
		return "", fmt.Errorf("nothing loaded")
	}

	v := p.Window()
	info, err := p.slicer.SliceWindow(snap.Name, v.Points, v.Start, v.End)
	if err != nil {
		return "", err
	}
	p.lastWrite = info.OutputPath
	p.logger.Info("exported window", "path", info.OutputPath, "points", info.Points)
	return info.OutputPath, nil
}

// ExportPNG writes the visible window as a PNG chart
func (p *Pane) ExportPNG() (string, error) {
	snap := p.loader.Snapshot()
	if snap.State != pipeline.StateReady {
		return "", fmt.Errorf("nothing loaded")
	}

	v := p.Window()
	csvPath := p.slicer.OutputPath(snap.Name, v.Start, v.End)
	pngPath := csvPath[:len(csvPath)-len(filepath.Ext(csvPath))] + ".png"

	f, err := os.Create(pngPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Base(pngPath), err)
	}

	if err := render.WritePNG(f, v.Points, v.Start, v.End, render.ThemeChartOptions(p.config.Theme)); err != nil {
		f.Close()
		os.Remove(pngPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	p.lastWrite = pngPath
	p.logger.Info("exported chart", "path", pngPath, "points", len(v.Points))
	return pngPath, nil
}

// LastWrite returns the most recent export path
func (p *Pane) LastWrite() string {
	return p.lastWrite
}
