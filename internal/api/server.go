// Package api exposes the trace pipeline over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/katonobu/satellite-orbit/internal/auth"
	"github.com/katonobu/satellite-orbit/internal/health"
	"github.com/katonobu/satellite-orbit/internal/httputil"
	"github.com/katonobu/satellite-orbit/internal/metrics"
	"github.com/katonobu/satellite-orbit/internal/pipeline"
	"github.com/katonobu/satellite-orbit/internal/tle"
)

// Config holds HTTP-facing settings.
type Config struct {
	Addr       string
	Auth       auth.Config
	TrustProxy bool
	// Location is used when a request has no tz parameter.
	Location *time.Location
	// Observer is used by /api/v1/view when lat/lon are omitted.
	Observer pipeline.Observer
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, pipe *pipeline.Pipeline, store *tle.Store, logger *slog.Logger) *Server {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	h := &handlers{
		cfg:    cfg,
		pipe:   pipe,
		logger: logger.With("component", "api"),
		now:    time.Now,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h.routes(store),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			// A cold run fetches element sets before sampling.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

func (h *handlers) routes(store *tle.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(store))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/map", h.groundTracks)
	mux.HandleFunc("GET /api/v1/view", h.skyView)
	mux.HandleFunc("GET /api/v1/config", h.config)

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(h.cfg.Auth)(handler)
	handler = loggingMiddleware(h.logger, h.cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)
	return handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := httputil.RequestID(r)
			w.Header().Set(httputil.RequestIDHeader, id)
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}
			logger.Log(r.Context(), level, "request",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
