package spatial

import (
	"testing"

	"isochrone/internal/model"
)

func TestStopsInBBox_FindsOnlyStopsInRange(t *testing.T) {
	stops := []model.Stop{
		{ID: "inside", Lat: 10.0, Lon: 20.0},
		{ID: "outside", Lat: 50.0, Lon: 60.0},
		{ID: "edge", Lat: 10.05, Lon: 20.05},
	}
	idx := Build(stops)

	got := idx.StopsInBBox(19.9, 9.9, 20.1, 10.1)
	if len(got) != 2 {
		t.Fatalf("StopsInBBox() returned %d stops, want 2: %+v", len(got), got)
	}
	names := map[string]bool{}
	for _, s := range got {
		names[s.ID] = true
	}
	if !names["inside"] || !names["edge"] {
		t.Errorf("StopsInBBox() = %+v, want inside and edge present", got)
	}
	if names["outside"] {
		t.Errorf("StopsInBBox() included out-of-range stop")
	}
}

func TestStopsInBBox_EmptyWhenNoneMatch(t *testing.T) {
	idx := Build([]model.Stop{{ID: "far", Lat: 89, Lon: 179}})
	got := idx.StopsInBBox(-1, -1, 1, 1)
	if len(got) != 0 {
		t.Fatalf("StopsInBBox() = %+v, want empty", got)
	}
}

func TestStopsInBBox_SpansMultipleCells(t *testing.T) {
	// Stops spread across several 0.005deg cells within one bbox.
	stops := []model.Stop{
		{ID: "a", Lat: 0.000, Lon: 0.000},
		{ID: "b", Lat: 0.010, Lon: 0.010},
		{ID: "c", Lat: 0.020, Lon: 0.020},
	}
	idx := Build(stops)
	got := idx.StopsInBBox(-0.001, -0.001, 0.021, 0.021)
	if len(got) != 3 {
		t.Fatalf("StopsInBBox() = %+v, want all 3 stops", got)
	}
}
