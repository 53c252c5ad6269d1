// Package isochrone implements the time-expanded, label-setting
// isochrone search (spec §4.6) and its result aggregator (spec §4.7):
// given an origin and a time budget, it walks outward to nearby stops,
// boards every schedule-valid departure, rides each trip forward, and
// fans out to transfers, recording the earliest arrival at every stop
// and edge it touches.
package isochrone

import (
	"context"
	"fmt"

	"isochrone/internal/feedstore"
	"isochrone/internal/spatial"
	"isochrone/internal/transfer"
	"isochrone/internal/walk"
)

// MinTransferSeconds is the minimum dwell time assumed between
// alighting and re-boarding at a different stop (spec §4.6).
const MinTransferSeconds = 35

// DefaultTransferPenalty is added to the effective departure time of a
// boarding when the rider changes routes (spec §4.6).
const DefaultTransferPenalty = 60

// UnsetTransferPenalty marks Request.TransferPenalty as not provided
// by the caller, distinct from an explicit, legitimate 0 ("no
// penalty"). Run resolves it to DefaultTransferPenalty.
const UnsetTransferPenalty = -1

// ServiceActiver decides whether a service runs on a given date. Both
// *calendar.Resolver and *calendar.MemoResolver satisfy it; callers
// SHOULD pass a per-request memoizing wrapper (spec §4.5).
type ServiceActiver interface {
	ServiceActive(service, date string) bool
}

// Request is one isochrone computation's inputs (spec §4.6).
type Request struct {
	OriginLat       float64
	OriginLon       float64
	Date            string // YYYYMMDD, the service day t_start is relative to
	TStart          int    // seconds since midnight
	Budget          int    // seconds
	TransferPenalty int    // seconds; UnsetTransferPenalty resolves to DefaultTransferPenalty

	// Visualize, when true, populates Result.Points with an
	// append-only stream of reached-point samples (spec §4.7).
	Visualize bool
}

// Point is one reached-point sample for visualization mode.
type Point struct {
	Lat              float64
	Lon              float64
	SecondsFromStart int
}

// Result is the output of a search: the edge_key → seconds_from_start
// mapping, and optionally the discovery-order point stream (spec §4.7).
type Result struct {
	EdgeTimes map[string]int
	Points    []Point
}

// Search holds the immutable, load-time-built collaborators the
// isochrone search queries. One Search is shared across all requests;
// Run allocates fresh per-request state for each call (spec §5).
type Search struct {
	store     *feedstore.Store
	idx       *spatial.Index
	transfers *transfer.Table
}

// New returns a Search over the given immutable collaborators.
func New(store *feedstore.Store, idx *spatial.Index, transfers *transfer.Table) *Search {
	return &Search{store: store, idx: idx, transfers: transfers}
}

// StopCount returns the number of stops in the loaded feed, for
// reporting in health checks.
func (s *Search) StopCount() int {
	return len(s.store.AllStops())
}

// Run executes one isochrone search. ctx is checked once per frontier
// pop; a canceled or expired ctx aborts cleanly and returns the
// partial result accumulated so far (spec §5: "check a wall-clock
// deadline... abort cleanly on deadline, returning the partial
// result").
func (s *Search) Run(ctx context.Context, req Request, active ServiceActiver) (*Result, error) {
	if req.Budget < 0 {
		return nil, fmt.Errorf("isochrone: negative budget %d", req.Budget)
	}

	penalty := req.TransferPenalty
	if penalty == UnsetTransferPenalty {
		penalty = DefaultTransferPenalty
	}

	deadline := req.TStart + req.Budget

	bestArrival := make(map[string]int)     // stop -> earliest known arrival
	bestArrivalEdge := make(map[string]int) // edge_key -> earliest known arrival
	result := &Result{EdgeTimes: make(map[string]int)}

	fr := newFrontier()

	// Seeding: walk from the origin to every nearby stop.
	for _, near := range walk.NearestStops(s.idx, req.OriginLat, req.OriginLon, walk.MaxWalkMeters) {
		arrive := req.TStart + int(walk.TimeSecs(near.DistanceM))
		if arrive-req.TStart > req.Budget {
			continue
		}
		stopID := near.Stop.ID
		bestArrival[stopID] = arrive
		s.emit(result, bestArrivalEdge, "s:"+stopID, arrive, req.TStart, stopID, req.Visualize)

		for _, d := range s.store.StopTimesAt(stopID, arrive) {
			if !active.ServiceActive(d.ServiceID, req.Date) {
				continue
			}
			fr.push(boarding{
				stop:             stopID,
				trip:             d.TripID,
				route:            d.RouteID,
				departureSecs:    d.DepartureSecs,
				boardingSequence: d.StopSequence,
				transferCount:    0,
			})
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return result, nil
		}

		b, ok := fr.pop()
		if !ok {
			break
		}
		if b.departureSecs > deadline {
			continue
		}

		for _, ts := range s.store.StopsOfTripAfter(b.trip, b.boardingSequence) {
			if ts.ArrivalSecs > deadline {
				break
			}

			edgeKey := fmt.Sprintf("t:%s:%s", b.trip, ts.StopID)
			s.emit(result, bestArrivalEdge, edgeKey, ts.ArrivalSecs, req.TStart, ts.StopID, req.Visualize)

			if cur, ok := bestArrival[ts.StopID]; ok && cur <= ts.ArrivalSecs {
				continue
			}
			bestArrival[ts.StopID] = ts.ArrivalSecs

			s.fanOutTransfers(fr, ts.StopID, ts.ArrivalSecs, b.trip, b.route, b.transferCount, deadline, req.Date, penalty, active)
		}
	}

	return result, nil
}

// fanOutTransfers enqueues a boarding record for every schedule-valid
// departure reachable by walking from stop to each of its transfers,
// including the identity "stay at stop" transfer (spec §4.6 step 3's
// transfer-fan-out).
func (s *Search) fanOutTransfers(fr *frontier, stopID string, arrival int, currentTrip string, currentRoute string, transferCount int, deadline int, date string, penalty int, active ServiceActiver) {
	for _, edge := range s.transfersFrom(stopID) {
		minTransfer := MinTransferSeconds
		if edge.ToStopID == stopID {
			minTransfer = 0 // identity transfer is exempt (spec §9)
		}
		readyTime := arrival + int(edge.WalkTimeSecs) + minTransfer
		if readyTime > deadline {
			continue
		}

		for _, d := range s.store.StopTimesAt(edge.ToStopID, readyTime) {
			if !active.ServiceActive(d.ServiceID, date) {
				continue
			}
			effDep := d.DepartureSecs
			if d.RouteID != currentRoute {
				effDep += penalty
			}
			if effDep > deadline {
				continue
			}
			fr.push(boarding{
				stop:             edge.ToStopID,
				trip:             d.TripID,
				route:            d.RouteID,
				departureSecs:    effDep,
				boardingSequence: d.StopSequence,
				transferCount:    transferCount + 1,
				previousTrip:     currentTrip,
			})
		}
	}
}

// transfersFrom returns stop's transfer edges, always including the
// identity "stay at stop" edge with zero walk time (spec §4.6), and
// falling back to a live nearest-stop query when the table has no
// entry for stop (spec §4.4).
func (s *Search) transfersFrom(stopID string) []transfer.Edge {
	edges := []transfer.Edge{{ToStopID: stopID, WalkDistanceM: 0, WalkTimeSecs: 0}}

	if precomputed := s.transfers.TransfersFrom(stopID); precomputed != nil {
		return append(edges, precomputed...)
	}

	stop, ok := s.store.Stop(stopID)
	if !ok {
		return edges
	}
	for _, near := range walk.NearestStops(s.idx, stop.Lat, stop.Lon, walk.MaxWalkMeters) {
		if near.Stop.ID == stopID {
			continue
		}
		edges = append(edges, transfer.Edge{
			ToStopID:      near.Stop.ID,
			WalkDistanceM: near.DistanceM,
			WalkTimeSecs:  walk.TimeSecs(near.DistanceM),
		})
	}
	return edges
}

// emit records an improving edge-level observation: the first
// (and only improving) arrival for edgeKey, appended to the
// visualization point stream in discovery order (spec §4.7).
func (s *Search) emit(result *Result, bestArrivalEdge map[string]int, edgeKey string, arrival int, tStart int, stopID string, visualize bool) {
	if cur, ok := bestArrivalEdge[edgeKey]; ok && cur <= arrival {
		return
	}
	bestArrivalEdge[edgeKey] = arrival
	secsFromStart := arrival - tStart
	result.EdgeTimes[edgeKey] = secsFromStart

	if !visualize {
		return
	}
	if stop, ok := s.store.Stop(stopID); ok {
		result.Points = append(result.Points, Point{Lat: stop.Lat, Lon: stop.Lon, SecondsFromStart: secsFromStart})
	}
}
