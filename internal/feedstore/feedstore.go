// Package feedstore holds the in-memory, read-only schedule tables and
// the derived indices the isochrone search queries. It is built once by
// the loader at startup and never mutated afterward (spec §4.1, §5).
package feedstore

import (
	"sort"

	"isochrone/internal/model"
)

// Departure is one boarding opportunity returned by StopTimesAt: a trip
// departing the queried stop, joined with its route and service.
type Departure struct {
	TripID        string
	RouteID       string
	ServiceID     string
	DepartureSecs int
	ArrivalSecs   int
	StopSequence  int
}

// TripStop is one later stop on a trip, returned by StopsOfTripAfter.
type TripStop struct {
	StopID        string
	ArrivalSecs   int
	DepartureSecs int
	StopSequence  int
}

// Store is the immutable, queryable view over a loaded Feed.
type Store struct {
	stops  map[string]model.Stop
	routes map[string]model.Route
	trips  map[string]model.Trip

	calendar       map[string]model.CalendarEntry
	calendarExceps map[string][]model.CalendarException

	stopTimesByStop map[string][]Departure // sorted by DepartureSecs ascending
	stopTimesByTrip map[string][]TripStop  // sorted by StopSequence ascending

	allStops []model.Stop
}

// Build assembles a Store from a parsed Feed, materializing the
// derived indices named in spec §3: stop_times_by_stop sorted by
// departure, stop_times_by_trip sorted by stop_sequence.
func Build(feed *model.Feed) *Store {
	s := &Store{
		stops:           make(map[string]model.Stop, len(feed.Stops)),
		routes:          make(map[string]model.Route, len(feed.Routes)),
		trips:           make(map[string]model.Trip, len(feed.Trips)),
		calendar:        make(map[string]model.CalendarEntry, len(feed.Calendar)),
		calendarExceps:  make(map[string][]model.CalendarException),
		stopTimesByStop: make(map[string][]Departure),
		stopTimesByTrip: make(map[string][]TripStop),
		allStops:        feed.Stops,
	}

	for _, stop := range feed.Stops {
		s.stops[stop.ID] = stop
	}
	for _, route := range feed.Routes {
		s.routes[route.ID] = route
	}
	for _, trip := range feed.Trips {
		s.trips[trip.ID] = trip
	}
	for _, c := range feed.Calendar {
		s.calendar[c.ServiceID] = c
	}
	for _, ex := range feed.CalendarDates {
		s.calendarExceps[ex.ServiceID] = append(s.calendarExceps[ex.ServiceID], ex)
	}

	for _, st := range feed.StopTimes {
		trip := s.trips[st.TripID]
		s.stopTimesByStop[st.StopID] = append(s.stopTimesByStop[st.StopID], Departure{
			TripID:        st.TripID,
			RouteID:       trip.RouteID,
			ServiceID:     trip.ServiceID,
			DepartureSecs: st.DepartureSecs,
			ArrivalSecs:   st.ArrivalSecs,
			StopSequence:  st.StopSequence,
		})
		s.stopTimesByTrip[st.TripID] = append(s.stopTimesByTrip[st.TripID], TripStop{
			StopID:        st.StopID,
			ArrivalSecs:   st.ArrivalSecs,
			DepartureSecs: st.DepartureSecs,
			StopSequence:  st.StopSequence,
		})
	}

	for stopID, deps := range s.stopTimesByStop {
		sort.Slice(deps, func(i, j int) bool { return deps[i].DepartureSecs < deps[j].DepartureSecs })
		s.stopTimesByStop[stopID] = deps
	}
	for tripID, stops := range s.stopTimesByTrip {
		sort.Slice(stops, func(i, j int) bool { return stops[i].StopSequence < stops[j].StopSequence })
		s.stopTimesByTrip[tripID] = stops
	}

	return s
}

// Stop returns the stop with the given ID and whether it exists.
func (s *Store) Stop(id string) (model.Stop, bool) {
	st, ok := s.stops[id]
	return st, ok
}

// AllStops returns every stop in load order. Callers must not mutate it.
func (s *Store) AllStops() []model.Stop {
	return s.allStops
}

// RouteOf returns the route a trip belongs to.
func (s *Store) RouteOf(tripID string) (model.Route, bool) {
	trip, ok := s.trips[tripID]
	if !ok {
		return model.Route{}, false
	}
	route, ok := s.routes[trip.RouteID]
	return route, ok
}

// ServiceOf returns the service identifier a trip belongs to.
func (s *Store) ServiceOf(tripID string) (string, bool) {
	trip, ok := s.trips[tripID]
	if !ok {
		return "", false
	}
	return trip.ServiceID, true
}

// Calendar returns the weekly recurrence rule for a service, if any.
func (s *Store) Calendar(serviceID string) (model.CalendarEntry, bool) {
	c, ok := s.calendar[serviceID]
	return c, ok
}

// CalendarExceptions returns the ADD/REMOVE overrides for a service.
func (s *Store) CalendarExceptions(serviceID string) []model.CalendarException {
	return s.calendarExceps[serviceID]
}

// StopTimesAt returns every departure from stop with DepartureSecs >=
// fromSecs, in departure order — the prefix-suffix of the pre-sorted
// stop_times_by_stop index located by binary search (spec §4.1).
// Unknown stops return an empty (nil) slice, never an error.
func (s *Store) StopTimesAt(stopID string, fromSecs int) []Departure {
	deps := s.stopTimesByStop[stopID]
	idx := sort.Search(len(deps), func(i int) bool { return deps[i].DepartureSecs >= fromSecs })
	return deps[idx:]
}

// StopsOfTripAfter returns the stops of trip with StopSequence >
// fromSequence, in stop_sequence order. Unknown trips return an empty
// (nil) slice, never an error.
func (s *Store) StopsOfTripAfter(tripID string, fromSequence int) []TripStop {
	stops := s.stopTimesByTrip[tripID]
	idx := sort.Search(len(stops), func(i int) bool { return stops[i].StopSequence > fromSequence })
	return stops[idx:]
}
