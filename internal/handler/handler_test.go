package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"isochrone/internal/calendar"
	"isochrone/internal/config"
	"isochrone/internal/feedstore"
	"isochrone/internal/isochrone"
	"isochrone/internal/model"
	"isochrone/internal/spatial"
	"isochrone/internal/transfer"
)

func testHandler(cfg *config.Config) *Handler {
	feed := &model.Feed{
		Stops: []model.Stop{{ID: "s1", Lat: 0, Lon: 0}},
		Calendar: []model.CalendarEntry{
			{ServiceID: "svc", Weekday: [7]bool{true, true, true, true, true, true, true}, StartDate: "20260101", EndDate: "20261231"},
		},
	}
	store := feedstore.Build(feed)
	idx := spatial.Build(feed.Stops)
	table := transfer.Build(store.AllStops(), idx)
	search := isochrone.New(store, idx, table)
	resolver := calendar.NewResolver(feed.Calendar, feed.CalendarDates)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(search, resolver, cfg, logger)
}

func TestHealthz_ReturnsOK(t *testing.T) {
	h := testHandler(&config.Config{MaxBudget: 7200})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestIsochrone_ValidRequestReturnsEdgeTimes(t *testing.T) {
	h := testHandler(&config.Config{MaxBudget: 7200, DefaultBudget: 1000, DefaultTransferPenalty: 60})
	body, _ := json.Marshal(isochroneRequest{OriginLat: 0, OriginLon: 0, Date: "20260727"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/isochrone", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Isochrone(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp isochroneResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.RequestID == "" {
		t.Errorf("RequestID is empty")
	}
	if _, ok := resp.EdgeTimes["s:s1"]; !ok {
		t.Errorf("EdgeTimes = %+v, want s:s1 present", resp.EdgeTimes)
	}
}

func TestIsochrone_MalformedBodyIsBadRequest(t *testing.T) {
	h := testHandler(&config.Config{MaxBudget: 7200})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/isochrone", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	h.Isochrone(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIsochrone_OutsideBoundingBoxIsRejected(t *testing.T) {
	h := testHandler(&config.Config{
		MaxBudget: 7200,
		MinLat:    44, MinLon: -94, MaxLat: 45, MaxLon: -93,
	})
	body, _ := json.Marshal(isochroneRequest{OriginLat: 0, OriginLon: 0, Date: "20260727"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/isochrone", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Isochrone(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestIsochrone_BudgetOverMaximumIsRejected(t *testing.T) {
	h := testHandler(&config.Config{MaxBudget: 100})
	over := 500
	body, _ := json.Marshal(isochroneRequest{OriginLat: 0, OriginLon: 0, Date: "20260727", Budget: &over})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/isochrone", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Isochrone(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
