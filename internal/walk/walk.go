// Package walk implements the origin/stop walking-distance sub-model
// (spec §4.3): the local equirectangular distance approximation, the
// straight-line walking-time conversion, and the nearest-stop query
// used both to seed the isochrone search and as the transfer table's
// fallback.
package walk

import (
	"math"
	"sort"

	"isochrone/internal/model"
	"isochrone/internal/spatial"
)

const (
	// StraightWalkingSpeed is used for all isochrone-search walking-time
	// conversions (spec §4.3).
	StraightWalkingSpeed = 1.25 // m/s

	// WalkingSpeed is reserved for networked (street-graph) routing and
	// is not used by the isochrone search.
	WalkingSpeed = 1.42 // m/s

	// MaxWalkMeters is the maximum walking distance the engine will
	// ever consider, for seeding and for transfers alike.
	MaxWalkMeters = 800.0

	metersPerDegLon = 111_320.0
	metersPerDegLat = 110_540.0
)

// Distance returns the equirectangular-approximation distance in
// meters between (latA, lonA) and (latB, lonB), using latA as the
// reference latitude for the longitude scale factor (spec §4.3).
func Distance(latA, lonA, latB, lonB float64) float64 {
	dx := metersPerDegLon * math.Cos(latA*math.Pi/180) * (lonB - lonA)
	dy := metersPerDegLat * (latB - latA)
	return math.Sqrt(dx*dx + dy*dy)
}

// TimeSecs converts a walking distance in meters to a walking duration
// in seconds at the straight-line walking speed.
func TimeSecs(distanceM float64) float64 {
	return distanceM / StraightWalkingSpeed
}

// NearbyStop is one result of a nearest_stops query.
type NearbyStop struct {
	Stop      model.Stop
	DistanceM float64
}

// NearestStops returns every stop within maxM meters of (lat, lon),
// sorted ascending by distance. It queries idx for the ±0.05° bounding
// box around (lat, lon), then filters by true equirectangular distance
// (spec §4.3).
func NearestStops(idx *spatial.Index, lat, lon, maxM float64) []NearbyStop {
	const padDeg = 0.05
	candidates := idx.StopsInBBox(lon-padDeg, lat-padDeg, lon+padDeg, lat+padDeg)

	var out []NearbyStop
	for _, s := range candidates {
		d := Distance(lat, lon, s.Lat, s.Lon)
		if d <= maxM {
			out = append(out, NearbyStop{Stop: s, DistanceM: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	return out
}
