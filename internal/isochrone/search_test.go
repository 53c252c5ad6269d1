package isochrone

import (
	"context"
	"testing"

	"isochrone/internal/feedstore"
	"isochrone/internal/model"
	"isochrone/internal/spatial"
	"isochrone/internal/transfer"
)

// alwaysActive treats every service as running on every date.
type alwaysActive struct{}

func (alwaysActive) ServiceActive(service, date string) bool { return true }

// neverActive treats every service as not running.
type neverActive struct{}

func (neverActive) ServiceActive(service, date string) bool { return false }

func sampleStore() (*feedstore.Store, *spatial.Index) {
	feed := &model.Feed{
		Stops: []model.Stop{
			{ID: "origin_stop", Lat: 0, Lon: 0},
			{ID: "mid", Lat: 0, Lon: 0.01},
			{ID: "far", Lat: 0, Lon: 0.02},
		},
		Routes: []model.Route{{ID: "r1"}, {ID: "r2"}},
		Trips: []model.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "weekday"},
			{ID: "t2", RouteID: "r2", ServiceID: "weekday"},
		},
		StopTimes: []model.StopTime{
			{TripID: "t1", StopID: "origin_stop", StopSequence: 1, ArrivalSecs: 100, DepartureSecs: 100},
			{TripID: "t1", StopID: "mid", StopSequence: 2, ArrivalSecs: 300, DepartureSecs: 310},
			// t2 continues from mid to far, on a different route.
			{TripID: "t2", StopID: "mid", StopSequence: 1, ArrivalSecs: 400, DepartureSecs: 400},
			{TripID: "t2", StopID: "far", StopSequence: 2, ArrivalSecs: 600, DepartureSecs: 600},
		},
		Calendar: []model.CalendarEntry{
			{ServiceID: "weekday", Weekday: [7]bool{true, true, true, true, true, false, false}, StartDate: "20260101", EndDate: "20261231"},
		},
	}
	store := feedstore.Build(feed)
	idx := spatial.Build(feed.Stops)
	return store, idx
}

func TestRun_SeedsAndBoardsFromOrigin(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	req := Request{OriginLat: 0, OriginLon: 0, Date: "20260727", TStart: 0, Budget: 1000}
	result, err := search.Run(context.Background(), req, alwaysActive{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := result.EdgeTimes["s:origin_stop"]; !ok {
		t.Errorf("EdgeTimes missing s:origin_stop seed, got %+v", result.EdgeTimes)
	}
	if v, ok := result.EdgeTimes["t:t1:mid"]; !ok || v != 300 {
		t.Errorf("EdgeTimes[t:t1:mid] = %v, %v, want 300, true", v, ok)
	}
}

func TestRun_TransferPenaltyAppliesOnRouteChange(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	req := Request{OriginLat: 0, OriginLon: 0, Date: "20260727", TStart: 0, Budget: 1000, TransferPenalty: 60}
	result, err := search.Run(context.Background(), req, alwaysActive{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Riding t1 to mid arrives at 300; t2 (route r2) departs mid at 400,
	// so its effective departure is 400+60 = 460, still within the
	// budget. The recorded arrival at far is t2's scheduled 600.
	if v, ok := result.EdgeTimes["t:t2:far"]; !ok || v != 600 {
		t.Errorf("EdgeTimes[t:t2:far] = %v, %v, want 600, true", v, ok)
	}

	// A penalty of 700 pushes t2's effective departure to 1100, past the
	// deadline of 1000, so t2 is never boarded and far is not reached.
	req.TransferPenalty = 700
	result, err = search.Run(context.Background(), req, alwaysActive{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v, ok := result.EdgeTimes["t:t2:far"]; ok {
		t.Errorf("EdgeTimes[t:t2:far] = %v with penalty 700, want absent", v)
	}
}

func TestRun_InactiveServiceNeverBoarded(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	req := Request{OriginLat: 0, OriginLon: 0, Date: "20260727", TStart: 0, Budget: 1000}
	result, err := search.Run(context.Background(), req, neverActive{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for key := range result.EdgeTimes {
		if key != "s:origin_stop" && key != "s:mid" && key != "s:far" {
			t.Errorf("EdgeTimes contains ride edge %q despite no active service", key)
		}
	}
}

func TestRun_BudgetExcludesOutOfRangeArrivals(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	req := Request{OriginLat: 0, OriginLon: 0, Date: "20260727", TStart: 0, Budget: 50}
	result, err := search.Run(context.Background(), req, alwaysActive{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := result.EdgeTimes["t:t1:mid"]; ok {
		t.Errorf("EdgeTimes contains t:t1:mid despite budget of 50s")
	}
}

func TestRun_VisualizeEmitsPoints(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	req := Request{OriginLat: 0, OriginLon: 0, Date: "20260727", TStart: 0, Budget: 1000, Visualize: true}
	result, err := search.Run(context.Background(), req, alwaysActive{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Points) == 0 {
		t.Errorf("Points is empty, want at least one sample in visualize mode")
	}
}

func TestRun_NegativeBudgetIsError(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	_, err := search.Run(context.Background(), Request{Budget: -1}, alwaysActive{})
	if err == nil {
		t.Errorf("Run() with negative budget: want error, got nil")
	}
}

func TestRun_CanceledContextReturnsPartialResult(t *testing.T) {
	store, idx := sampleStore()
	table := transfer.Build(store.AllStops(), idx)
	search := New(store, idx, table)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := Request{OriginLat: 0, OriginLon: 0, Date: "20260727", TStart: 0, Budget: 1000}
	result, err := search.Run(ctx, req, alwaysActive{})
	if err != nil {
		t.Fatalf("Run() with canceled context: error = %v, want nil", err)
	}
	if result == nil {
		t.Fatalf("Run() with canceled context: result = nil, want non-nil partial result")
	}
}
