package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"github.com/TimelordUK/sigview/internal/config"
	"github.com/TimelordUK/sigview/internal/pipeline"
	"github.com/TimelordUK/sigview/internal/render"
	"github.com/TimelordUK/sigview/internal/server"
	"github.com/TimelordUK/sigview/internal/slice"
	"github.com/TimelordUK/sigview/internal/source"
	"github.com/TimelordUK/sigview/internal/ui"
	"github.com/TimelordUK/sigview/internal/window"
	"github.com/TimelordUK/sigview/pkg/tsformat"
)

type options struct {
	configPath  string
	cursor      string
	granularity string
	chunkSize   int
	jsonOut     bool
	csvOut      string
	pngOut      string
	serveAddr   string
	logPath     string
	verbose     bool
	writeConfig bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", config.GetConfigPath(), "Config file")
	flag.StringVar(&opts.cursor, "t", "0", "Cursor time (e.g. 2.5, 2.5s, 250ms)")
	flag.StringVar(&opts.granularity, "g", "", "Granularity: 10s, 1s, 100ms, 10ms, 1ms")
	flag.IntVar(&opts.chunkSize, "chunk", 0, "Bytes per read (overrides config)")
	flag.BoolVar(&opts.jsonOut, "json", false, "Print the visible window as JSON and exit")
	flag.StringVar(&opts.csvOut, "csv", "", "Write the visible window as CSV to this path (- for stdout) and exit")
	flag.StringVar(&opts.pngOut, "png", "", "Write the visible window as a PNG chart and exit")
	flag.StringVar(&opts.serveAddr, "serve", "", "Serve the HTTP API on this address (e.g. :8080)")
	flag.StringVar(&opts.logPath, "log", "", "Write logs to this file")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging")
	flag.BoolVar(&opts.writeConfig, "write-config", false, "Write the effective config to -config and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigview [flags] [file.csv]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(opts, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, args []string) error {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return err
	}
	if opts.chunkSize > 0 {
		cfg.Pipeline.ChunkSize = opts.chunkSize
	}
	if opts.writeConfig {
		if opts.configPath == "" {
			return errors.New("no config path")
		}
		if err := config.SaveTo(opts.configPath, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", opts.configPath)
		return nil
	}
	if opts.granularity == "" {
		opts.granularity = cfg.View.DefaultGranularity
	}

	interactive := !opts.jsonOut && opts.csvOut == "" && opts.pngOut == "" && opts.serveAddr == ""

	logger, closeLog, err := newLogger(opts, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	cursor, err := tsformat.ParseSeconds(opts.cursor)
	if err != nil {
		return err
	}
	gran, err := window.ParseGranularity(opts.granularity)
	if err != nil {
		return err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	switch {
	case opts.serveAddr != "":
		return serve(cfg, logger, opts.serveAddr, path)
	case interactive:
		return runTUI(cfg, logger, path, cursor, gran)
	}

	if path == "" {
		return errors.New("a file is required")
	}
	return oneShot(cfg, logger, opts, path, cursor, gran)
}

// newLogger logs to stderr, except in the terminal UI where output would
// corrupt the screen; there logs go to -log or nowhere.
func newLogger(opts options, interactive bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case opts.logPath != "":
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case interactive:
		w = io.Discard
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts)), closeFn, nil
}

func runTUI(cfg *config.Config, logger *slog.Logger, path string, cursor float64, gran window.Granularity) error {
	model, err := ui.NewModelWithOptions(ui.ModelOptions{
		Filepath:    path,
		Cursor:      cursor,
		Granularity: gran.String(),
		Config:      cfg,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func oneShot(cfg *config.Config, logger *slog.Logger, opts options, path string, cursor float64, gran window.Granularity) error {
	src, err := source.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := pipeline.Process(context.Background(), src, pipeline.OptionsFrom(cfg.Pipeline, logger))
	if err != nil {
		return userError(err)
	}

	v := window.NewView(res.Series, cursor, gran, cfg.View.TotalDuration)

	if opts.csvOut != "" {
		if opts.csvOut == "-" {
			if err := slice.WriteCSV(os.Stdout, v.Points); err != nil {
				return err
			}
		} else if err := slice.NewSlicer().SliceTo(opts.csvOut, v.Points); err != nil {
			return err
		}
	}

	if opts.pngOut != "" {
		if err := writePNG(opts.pngOut, v, render.ThemeChartOptions(cfg.Theme)); err != nil {
			return err
		}
		logger.Info("wrote chart", "path", opts.pngOut, "points", len(v.Points))
	}

	if opts.jsonOut {
		out := struct {
			Source string `json:"source"`
			window.View
		}{Source: filepath.Base(path), View: v}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if term.IsTerminal(os.Stdout.Fd()) {
			return render.HighlightJSON(os.Stdout, data, "")
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	return nil
}

// userError hides read offsets and OS detail behind the pipeline's message;
// main adds the "Error: " prefix back
func userError(err error) error {
	return errors.New(strings.TrimPrefix(pipeline.UserMessage(err), "Error: "))
}

func writePNG(path string, v window.View, opts render.ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WritePNG(f, v.Points, v.Start, v.End, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func serve(cfg *config.Config, logger *slog.Logger, addr, path string) error {
	loader := pipeline.NewLoader(pipeline.OptionsFrom(cfg.Pipeline, logger))

	if path != "" {
		src, err := source.Open(path)
		if err != nil {
			return err
		}
		_, err = loader.Run(context.Background(), filepath.Base(path), src)
		src.Close()
		if err != nil {
			return userError(err)
		}
	}

	api := server.New(loader, cfg.View.TotalDuration, render.ThemeChartOptions(cfg.Theme), logger)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
