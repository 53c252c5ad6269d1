// Package handler implements the thin HTTP surface over the isochrone
// engine (spec §1 scopes "HTTP surface (endpoint framing, JSON
// encoding)" out of the core; this is the minimal framing needed to
// exercise it end to end).
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"isochrone/internal/calendar"
	"isochrone/internal/config"
	"isochrone/internal/isochrone"
)

// Handler holds the shared, immutable dependencies for all HTTP
// handlers: the search engine and the calendar resolver it memoizes
// per request (spec §4.5, §5).
type Handler struct {
	search   *isochrone.Search
	resolver *calendar.Resolver
	cfg      *config.Config
	logger   *slog.Logger
}

// New creates a Handler.
func New(search *isochrone.Search, resolver *calendar.Resolver, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{search: search, resolver: resolver, cfg: cfg, logger: logger}
}

// isochroneRequest is the JSON body of POST /api/v1/isochrone.
type isochroneRequest struct {
	OriginLat       float64 `json:"origin_lat"`
	OriginLon       float64 `json:"origin_lon"`
	Date            string  `json:"date"` // YYYYMMDD
	TStart          *int    `json:"t_start,omitempty"`
	Budget          *int    `json:"budget,omitempty"`
	TransferPenalty *int    `json:"transfer_penalty,omitempty"`
	Visualize       bool    `json:"visualize,omitempty"`
}

// isochroneResponse is the JSON body returned by POST /api/v1/isochrone.
type isochroneResponse struct {
	RequestID string            `json:"request_id"`
	EdgeTimes map[string]int    `json:"edge_times"`
	Points    []isochrone.Point `json:"points,omitempty"`
}

// Isochrone handles POST /api/v1/isochrone.
func (h *Handler) Isochrone(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := h.logger.With("request_id", requestID)

	var req isochroneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed request body", "error", err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if !h.cfg.InBoundingBox(req.OriginLat, req.OriginLon) {
		writeError(w, http.StatusUnprocessableEntity, "origin is outside the supported area")
		return
	}

	tStart := h.cfg.DefaultTStart
	if req.TStart != nil {
		tStart = *req.TStart
	}
	budget := h.cfg.DefaultBudget
	if req.Budget != nil {
		budget = *req.Budget
	}
	if budget < 0 {
		writeError(w, http.StatusUnprocessableEntity, "budget must be non-negative")
		return
	}
	if budget > h.cfg.MaxBudget {
		writeError(w, http.StatusUnprocessableEntity, "budget exceeds the configured maximum")
		return
	}
	transferPenalty := h.cfg.DefaultTransferPenalty
	if req.TransferPenalty != nil {
		transferPenalty = *req.TransferPenalty
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.search.Run(ctx, isochrone.Request{
		OriginLat:       req.OriginLat,
		OriginLon:       req.OriginLon,
		Date:            req.Date,
		TStart:          tStart,
		Budget:          budget,
		TransferPenalty: transferPenalty,
		Visualize:       req.Visualize,
	}, calendar.NewMemo(h.resolver))
	if err != nil {
		log.Error("search failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(isochroneResponse{
		RequestID: requestID,
		EdgeTimes: result.EdgeTimes,
		Points:    result.Points,
	})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"stop_count": h.search.StopCount(),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
