package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Pipeline    PipelineConfig   `toml:"pipeline"`
	View        ViewConfig       `toml:"view"`
	Theme       ThemeConfig      `toml:"theme"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Server      ServerConfig     `toml:"server"`
}

// PipelineConfig holds the scan and decimation constants
type PipelineConfig struct {
	ChunkSize        int `toml:"chunk_size"`
	DecimationFactor int `toml:"decimation_factor"`
	SampleRate       int `toml:"sample_rate"`
}

// ViewConfig holds cursor and window options
type ViewConfig struct {
	TotalDuration      float64 `toml:"total_duration"`
	CursorStep         float64 `toml:"cursor_step"`
	DefaultGranularity string  `toml:"default_granularity"`
	ShowAxis           bool    `toml:"show_axis"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Name          string `toml:"name"`
	Line          string `toml:"line"`
	Fill          string `toml:"fill"`
	StatusBar     string `toml:"status_bar"`
	StatusBarText string `toml:"status_bar_text"`
	Error         string `toml:"error"`
	Help          string `toml:"help"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit        []string `toml:"quit"`
	CursorLeft  []string `toml:"cursor_left"`
	CursorRight []string `toml:"cursor_right"`
	Start       []string `toml:"start"`
	End         []string `toml:"end"`
	ZoomIn      []string `toml:"zoom_in"`
	ZoomOut     []string `toml:"zoom_out"`
	Open        []string `toml:"open"`
	ExportPNG   []string `toml:"export_png"`
	ExportCSV   []string `toml:"export_csv"`
}

// ServerConfig holds the HTTP service options
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ChunkSize:        1_000_000,
			DecimationFactor: 1000,
			SampleRate:       4_000_000,
		},
		View: ViewConfig{
			TotalDuration:      10,
			CursorStep:         0.1,
			DefaultGranularity: "10s",
			ShowAxis:           false,
		},
		Theme: ThemeConfig{
			Name:          "subtle",
			Line:          "#2a9d90", // Teal
			Fill:          "#2a9d90", // Drawn at 20% opacity
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Error:         "167", // Soft red
			Help:          "240", // Dark gray
		},
		Keybindings: KeybindingConfig{
			Quit:        []string{"q", "ctrl+c"},
			CursorLeft:  []string{"h", "left"},
			CursorRight: []string{"l", "right"},
			Start:       []string{"g", "home"},
			End:         []string{"G", "end"},
			ZoomIn:      []string{"+", "="},
			ZoomOut:     []string{"-"},
			Open:        []string{"o"},
			ExportPNG:   []string{"p"},
			ExportCSV:   []string{"s"},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate rejects values the pipeline or view cannot work with
func (c *Config) Validate() error {
	if c.Pipeline.ChunkSize < 1 {
		return fmt.Errorf("pipeline.chunk_size must be >= 1")
	}
	if c.Pipeline.DecimationFactor < 1 {
		return fmt.Errorf("pipeline.decimation_factor must be >= 1")
	}
	if c.Pipeline.SampleRate < 1 {
		return fmt.Errorf("pipeline.sample_rate must be >= 1")
	}
	if c.View.TotalDuration <= 0 {
		return fmt.Errorf("view.total_duration must be > 0")
	}
	if c.View.CursorStep <= 0 {
		return fmt.Errorf("view.cursor_step must be > 0")
	}
	return nil
}

// LoadFrom loads config from path; a missing file yields the defaults
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo saves config to path
func SaveTo(configPath string, cfg *Config) error {
	if configPath == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sigview", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "sigview", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
