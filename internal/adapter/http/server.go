package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/couchcryptid/weather-glance/internal/forecast"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Display is the activate target.
type Display interface {
	Activate() domain.DisplayMode
	Mode() domain.DisplayMode
}

// Frames exposes the most recently drawn frame.
type Frames interface {
	Frame() (domain.Frame, bool)
	WritePNG(w io.Writer) error
}

// Refresher triggers an immediate forecast fetch.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Server exposes health, metrics, frame export, and the activate input.
type Server struct {
	httpServer *http.Server
	display    Display
	frames     Frames
	refresher  Refresher
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /frame,
// /frame.png, /activate, and /refresh routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, refresher Refresher, display Display, frames Frames, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		display:   display,
		frames:    frames,
		refresher: refresher,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /frame.png", s.handleFramePNG)
	mux.HandleFunc("GET /mode", s.handleMode)
	mux.HandleFunc("POST /activate", s.handleActivate)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame, ok := s.frames.Frame()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no frame drawn yet")
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleFramePNG(w http.ResponseWriter, _ *http.Request) {
	if _, ok := s.frames.Frame(); !ok {
		writeError(w, http.StatusServiceUnavailable, "no frame drawn yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.frames.WritePNG(w); err != nil {
		s.logger.Error("write frame png failed", "error", err)
	}
}

func (s *Server) handleMode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.display.Mode())
}

func (s *Server) handleActivate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.display.Activate())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.refresher.Refresh(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
	case errors.Is(err, forecast.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Warn("manual refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
