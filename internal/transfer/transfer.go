// Package transfer builds and serves the precomputed near-neighbor
// walk table between stops (spec §4.4).
package transfer

import (
	"isochrone/internal/model"
	"isochrone/internal/spatial"
	"isochrone/internal/walk"
)

// Edge is one precomputed transfer from a stop, as served by Table.
type Edge struct {
	ToStopID      string
	WalkDistanceM float64
	WalkTimeSecs  float64
}

// Table is the immutable, read-only transfer table. If nil, callers
// should fall back to walk.NearestStops anchored at the stop's own
// coordinates (spec §4.4's documented fallback).
type Table struct {
	edges map[string][]Edge
}

// Build precomputes transfers[s] for every stop s: every other stop
// within walk.MaxWalkMeters, found via idx with a ±0.01° pre-filter.
// The resulting table is symmetric up to the distance formula's own
// symmetry at reference-latitude precision (spec §4.4).
func Build(stops []model.Stop, idx *spatial.Index) *Table {
	const padDeg = 0.01

	t := &Table{edges: make(map[string][]Edge, len(stops))}
	for _, s := range stops {
		candidates := idx.StopsInBBox(s.Lon-padDeg, s.Lat-padDeg, s.Lon+padDeg, s.Lat+padDeg)
		var edges []Edge
		for _, other := range candidates {
			if other.ID == s.ID {
				continue
			}
			d := walk.Distance(s.Lat, s.Lon, other.Lat, other.Lon)
			if d <= walk.MaxWalkMeters {
				edges = append(edges, Edge{
					ToStopID:      other.ID,
					WalkDistanceM: d,
					WalkTimeSecs:  walk.TimeSecs(d),
				})
			}
		}
		if edges != nil {
			t.edges[s.ID] = edges
		}
	}
	return t
}

// TransfersFrom returns the precomputed transfers from stop, or nil if
// none were built for it.
func (t *Table) TransfersFrom(stopID string) []Edge {
	if t == nil {
		return nil
	}
	return t.edges[stopID]
}
