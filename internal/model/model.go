// Package model holds the schedule types shared across the feed loader,
// the feed store and the isochrone search. All types are immutable once
// built by the loader.
package model

// Stop is a scheduled boarding location with a fixed coordinate.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Route labels a group of trips sharing branding/number.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	Color     string
}

// Trip is a single scheduled run of a vehicle along an ordered stop sequence.
type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
	Headsign  string
}

// StopTime is one scheduled stop visit within a trip. ArrivalSecs and
// DepartureSecs are seconds since midnight of the service day and may
// exceed 86400 for post-midnight service.
type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalSecs   int
	DepartureSecs int
}

// ExceptionKind is the calendar_dates.txt exception_type.
type ExceptionKind int8

const (
	ExceptionAdd    ExceptionKind = 1
	ExceptionRemove ExceptionKind = 2
)

// CalendarEntry is the weekly recurrence rule for a service.
type CalendarEntry struct {
	ServiceID string
	Weekday   [7]bool // Monday..Sunday
	StartDate string  // YYYYMMDD
	EndDate   string  // YYYYMMDD
}

// CalendarException is a single-date override (ADD or REMOVE) for a service.
type CalendarException struct {
	ServiceID string
	Date      string // YYYYMMDD
	Kind      ExceptionKind
}

// TransferEdge is a precomputed walk between two distinct stops.
type TransferEdge struct {
	FromStopID    string
	ToStopID      string
	WalkDistanceM float64
	WalkTimeSecs  float64
}

// Feed is the complete set of schedule tables produced by the loader.
// It carries no indices of its own — internal/feedstore builds those.
type Feed struct {
	Agencies      []Agency
	Routes        []Route
	Stops         []Stop
	Trips         []Trip
	StopTimes     []StopTime
	Calendar      []CalendarEntry
	CalendarDates []CalendarException
}

// Agency is carried through for completeness (GTFS requires it) but the
// isochrone engine never reads it directly.
type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
}
