package ui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/sigview/internal/config"
	"github.com/TimelordUK/sigview/internal/pipeline"
	"github.com/TimelordUK/sigview/internal/source"
	"github.com/TimelordUK/sigview/internal/window"
	"github.com/TimelordUK/sigview/pkg/tsformat"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeOpen
)

// ModelOptions configures a new Model
type ModelOptions struct {
	Filepath    string
	Cursor      float64
	Granularity string
	Config      *config.Config
	Logger      *slog.Logger
}

// Model is the main application model
type Model struct {
	pane      *Pane
	config    *config.Config
	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	pathInput textinput.Model

	mode   Mode
	width  int
	height int

	// Pending load started before Init
	initCmd tea.Cmd

	// One-line feedback (validation errors, export paths)
	message string
	isError bool

	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
	helpStyle   lipgloss.Style
	titleStyle  lipgloss.Style
}

// NewModelWithOptions creates a new application model
func NewModelWithOptions(opts ModelOptions) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pane := NewPane(cfg, logger)
	if opts.Granularity != "" {
		g, err := window.ParseGranularity(opts.Granularity)
		if err != nil {
			return nil, err
		}
		pane.SetGranularity(g)
	}
	pane.SetCursor(opts.Cursor)

	ti := textinput.New()
	ti.Placeholder = "path/to/file.csv"
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		pane:        pane,
		config:      cfg,
		keys:        newKeyMap(cfg.Keybindings),
		help:        help.New(),
		spinner:     sp,
		pathInput:   ti,
		mode:        ModeNormal,
		statusStyle: lipgloss.NewStyle().Background(lipgloss.Color(cfg.Theme.StatusBar)).Foreground(lipgloss.Color(cfg.Theme.StatusBarText)),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Error)),
		helpStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Help)),
		titleStyle:  lipgloss.NewStyle().Bold(true),
	}

	if opts.Filepath != "" {
		cmd, err := pane.Load(opts.Filepath)
		if err != nil {
			return nil, err
		}
		m.initCmd = cmd
	}

	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.spinner.Tick)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Reserve title, overview, status, message and help lines
		m.pane.SetSize(msg.Width, msg.Height-5)
		return m, nil

	case loadedMsg:
		if m.pane.Complete(msg) && msg.err == nil {
			m.setMessage("", false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeOpen {
		return m.handleOpenKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		m.pane.StepCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.pane.StepCursor(1)
	case key.Matches(msg, m.keys.Start):
		m.pane.SetCursor(0)
	case key.Matches(msg, m.keys.End):
		m.pane.SetCursor(m.config.View.TotalDuration)

	case key.Matches(msg, m.keys.ZoomIn):
		m.pane.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.pane.ZoomOut()
	case key.Matches(msg, m.keys.Granularity):
		// keys 1..5 map to 10s..1ms
		idx := int(msg.String()[0] - '1')
		m.pane.SetGranularity(window.All[idx])

	case key.Matches(msg, m.keys.Open):
		m.mode = ModeOpen
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ExportCSV):
		path, err := m.pane.ExportCSV()
		m.reportExport(path, err)
	case key.Matches(msg, m.keys.ExportPNG):
		path, err := m.pane.ExportPNG()
		m.reportExport(path, err)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) handleOpenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.mode = ModeNormal
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		cmd, err := m.pane.Load(path)
		if err != nil {
			m.setMessage(openErrorMessage(err), true)
			return m, nil
		}
		m.setMessage("", false)
		return m, cmd

	case "esc":
		m.mode = ModeNormal
		m.pathInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) reportExport(path string, err error) {
	if err != nil {
		m.setMessage("Export failed: "+err.Error(), true)
		return
	}
	m.setMessage("Wrote "+path, false)
}

func (m *Model) setMessage(msg string, isError bool) {
	m.message = msg
	m.isError = isError
}

// openErrorMessage renders file-selection errors the way the status line
// shows pipeline errors
func openErrorMessage(err error) string {
	switch {
	case errors.Is(err, source.ErrNotCSV):
		return "Error: Please select a valid CSV file."
	case errors.Is(err, source.ErrEmptyFile):
		return "Error: The selected file is empty."
	}
	return "Error: " + err.Error()
}

// View implements tea.Model
func (m *Model) View() string {
	var builder strings.Builder
	snap := m.pane.Snapshot()

	// Title
	title := "Signal Amplitude"
	if snap.Name != "" {
		title += " · " + snap.Name
	}
	builder.WriteString(m.titleStyle.Render(title))
	builder.WriteString("\n")

	// Main content
	builder.WriteString(m.renderBody(snap))
	builder.WriteString("\n")

	// Whole-series overview
	builder.WriteString(m.helpStyle.Render(m.pane.Overview(m.width)))
	builder.WriteString("\n")

	// Status bar
	statusStyle := m.statusStyle.Width(m.width)
	var status string
	switch m.mode {
	case ModeOpen:
		status = "open: " + m.pathInput.View()
	default:
		win := m.pane.Window()
		status = fmt.Sprintf(" %s  %s  %s  %d pts",
			tsformat.FormatPosition(m.pane.Cursor()),
			m.pane.Granularity().Label(),
			tsformat.FormatRange(win.Start, win.End),
			len(win.Points))
		if snap.State == pipeline.StateReady {
			status += fmt.Sprintf("  [%d/%d samples, %s]",
				snap.Stats.Retained, snap.Stats.Parsed, snap.Stats.Elapsed.Round(time.Millisecond))
		}
	}
	builder.WriteString(statusStyle.Render(status))
	builder.WriteString("\n")

	// Message line
	if m.isError {
		builder.WriteString(m.errorStyle.Render(m.message))
	} else {
		builder.WriteString(m.helpStyle.Render(m.message))
	}
	builder.WriteString("\n")

	// Help line
	builder.WriteString(m.help.View(m.keys))

	return builder.String()
}

func (m *Model) renderBody(snap pipeline.Snapshot) string {
	_, height := m.pane.chart.Size()
	box := lipgloss.NewStyle().Width(max(1, m.width)).Height(max(1, height))

	switch snap.State {
	case pipeline.StateIdle:
		return box.Render(m.helpStyle.Render("Press o to open a CSV file"))
	case pipeline.StateLoading:
		line := fmt.Sprintf("%s Loading %s… %.0f%%", m.spinner.View(), snap.Name, m.pane.Progress()*100)
		return box.Render(line)
	case pipeline.StateError:
		return box.Render(m.errorStyle.Render(pipeline.UserMessage(snap.Err)))
	}
	return m.pane.Render()
}
