package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/TimelordUK/sigview/internal/config"
)

type keyMap struct {
	Left        key.Binding
	Right       key.Binding
	Start       key.Binding
	End         key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Granularity key.Binding
	Open        key.Binding
	ExportPNG   key.Binding
	ExportCSV   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap(cfg config.KeybindingConfig) keyMap {
	return keyMap{
		Left:        binding(cfg.CursorLeft, "cursor -"),
		Right:       binding(cfg.CursorRight, "cursor +"),
		Start:       binding(cfg.Start, "start"),
		End:         binding(cfg.End, "end"),
		ZoomIn:      binding(cfg.ZoomIn, "zoom in"),
		ZoomOut:     binding(cfg.ZoomOut, "zoom out"),
		Granularity: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "10s…1ms")),
		Open:        binding(cfg.Open, "open"),
		ExportPNG:   binding(cfg.ExportPNG, "png"),
		ExportCSV:   binding(cfg.ExportCSV, "csv"),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        binding(cfg.Quit, "quit"),
	}
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), desc),
	)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Granularity, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Start, k.End},
		{k.ZoomIn, k.ZoomOut, k.Granularity},
		{k.Open, k.ExportPNG, k.ExportCSV},
		{k.Help, k.Quit},
	}
}
