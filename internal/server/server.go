package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TimelordUK/sigview/internal/pipeline"
	"github.com/TimelordUK/sigview/internal/render"
	"github.com/TimelordUK/sigview/internal/source"
	"github.com/TimelordUK/sigview/internal/window"
	"github.com/TimelordUK/sigview/pkg/tsformat"
)

// Server exposes the loaded series over HTTP
type Server struct {
	loader        *pipeline.Loader
	totalDuration float64
	chart         render.ChartOptions
	logger        *slog.Logger
}

// New creates a new API server
func New(loader *pipeline.Loader, totalDuration float64, chart render.ChartOptions, logger *slog.Logger) *Server {
	if totalDuration <= 0 {
		totalDuration = window.DefaultTotalDuration
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		loader:        loader,
		totalDuration: totalDuration,
		chart:         chart,
		logger:        logger,
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/series", s.GetSeries)
		r.Get("/window", s.GetWindow)
		r.Get("/window.png", s.GetWindowPNG)
		r.Post("/load", s.Load)
	})

	return r
}

// SeriesResponse describes the loaded series
type SeriesResponse struct {
	State         string          `json:"state"`
	Name          string          `json:"name,omitempty"`
	Samples       int             `json:"samples"`
	Duration      float64         `json:"duration"`
	EffectiveRate float64         `json:"effective_rate"`
	Stats         *pipeline.Stats `json:"stats,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// LoadRequest is the request body for loading a file
type LoadRequest struct {
	Path string `json:"path"`
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSeries handles GET /api/series
func (s *Server) GetSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.describe(s.loader.Snapshot()))
}

// GetWindow handles GET /api/window?t=2.5&g=100ms
func (s *Server) GetWindow(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectWindow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GetWindowPNG handles GET /api/window.png?t=2.5&g=100ms
func (s *Server) GetWindowPNG(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectWindow(w, r)
	if !ok {
		return
	}

	opts := s.chart
	if width, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil && width > 0 {
		opts.Width = width
	}
	if height, err := strconv.Atoi(r.URL.Query().Get("h")); err == nil && height > 0 {
		opts.Height = height
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.WritePNG(w, v.Points, v.Start, v.End, opts); err != nil {
		if errors.Is(err, render.ErrNoPoints) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("render png failed", "err", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
	}
}

// Load handles POST /api/load. The pipeline runs synchronously; a request
// for a newer file supersedes one still in flight.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	src, err := source.Open(req.Path)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, source.ErrNotCSV) && !errors.Is(err, source.ErrEmptyFile) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	defer src.Close()

	snap, err := s.loader.Run(context.WithoutCancel(r.Context()), filepath.Base(req.Path), src)
	if err != nil {
		s.logger.Warn("load failed", "path", req.Path, "err", err)
		writeJSON(w, loadStatus(err), s.describe(snap))
		return
	}
	writeJSON(w, http.StatusOK, s.describe(snap))
}

// loadStatus maps a failed run to a response code. A run replaced by a newer
// load conflicts with it; anything else is a problem with the file.
func loadStatus(err error) int {
	if errors.Is(err, pipeline.ErrSuperseded) {
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

// selectWindow parses the t and g parameters and selects the window.
// It writes an error response and reports false when that is not possible.
func (s *Server) selectWindow(w http.ResponseWriter, r *http.Request) (window.View, bool) {
	snap := s.loader.Snapshot()
	if snap.State != pipeline.StateReady {
		http.Error(w, "no series loaded ("+snap.State.String()+")", http.StatusConflict)
		return window.View{}, false
	}

	query := r.URL.Query()
	cursor := 0.0
	if t := query.Get("t"); t != "" {
		parsed, err := tsformat.ParseSeconds(t)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return window.View{}, false
		}
		cursor = parsed
	}

	g := window.Gran10s
	if gs := query.Get("g"); gs != "" {
		parsed, err := window.ParseGranularity(gs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return window.View{}, false
		}
		g = parsed
	}

	return window.NewView(snap.Series, cursor, g, s.totalDuration), true
}

func (s *Server) describe(snap pipeline.Snapshot) SeriesResponse {
	resp := SeriesResponse{
		State: snap.State.String(),
		Name:  snap.Name,
	}
	if snap.Err != nil {
		resp.Error = pipeline.UserMessage(snap.Err)
	}
	if snap.State == pipeline.StateReady {
		stats := snap.Stats
		resp.Samples = snap.Series.Len()
		resp.Duration = snap.Series.Duration()
		resp.EffectiveRate = snap.Series.EffectiveRateHz()
		resp.Stats = &stats
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
