package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"isochrone/internal/config"
	"isochrone/internal/handler"
)

// Server is the HTTP server exposing the isochrone engine.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, h *handler.Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/isochrone", h.Isochrone)
	mux.HandleFunc("GET /healthz", h.Healthz)

	return &Server{mux: mux, cfg: cfg, logger: logger}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, withMiddleware(s.mux, s.logger))
}
