// Package spatial is a read-only, rectangular-range lookup over stops
// (spec §4.2). It is a flat grid keyed on ~0.005° cells, a pragmatic
// alternative to an R-tree for a feed-sized, load-once stop set.
package spatial

import (
	"math"

	"isochrone/internal/model"
)

// cellSizeDeg is the side length of one grid cell in degrees.
const cellSizeDeg = 0.005

type cellKey struct{ x, y int }

// Index is a read-only grid over a fixed set of stops, built once at
// load time (spec §4.2: "The index is read-only after build.").
type Index struct {
	cells map[cellKey][]model.Stop
}

// Build inserts every stop into the grid. The index is immutable after
// this call returns.
func Build(stops []model.Stop) *Index {
	idx := &Index{cells: make(map[cellKey][]model.Stop)}
	for _, s := range stops {
		k := cellOf(s.Lon, s.Lat)
		idx.cells[k] = append(idx.cells[k], s)
	}
	return idx
}

func cellOf(lon, lat float64) cellKey {
	return cellKey{
		x: int(math.Floor(lon / cellSizeDeg)),
		y: int(math.Floor(lat / cellSizeDeg)),
	}
}

// StopsInBBox returns every stop whose coordinate falls within the
// closed rectangle [minLon, maxLon] x [minLat, maxLat].
func (idx *Index) StopsInBBox(minLon, minLat, maxLon, maxLat float64) []model.Stop {
	minCellX := int(math.Floor(minLon / cellSizeDeg))
	maxCellX := int(math.Floor(maxLon / cellSizeDeg))
	minCellY := int(math.Floor(minLat / cellSizeDeg))
	maxCellY := int(math.Floor(maxLat / cellSizeDeg))

	var out []model.Stop
	for x := minCellX; x <= maxCellX; x++ {
		for y := minCellY; y <= maxCellY; y++ {
			for _, s := range idx.cells[cellKey{x, y}] {
				if s.Lon >= minLon && s.Lon <= maxLon && s.Lat >= minLat && s.Lat <= maxLat {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
