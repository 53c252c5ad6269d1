// Package feedload parses a GTFS-shaped zip archive (agency, routes,
// stops, trips, calendar, calendar_dates, stop_times) into model.Feed.
// Shapes, fares and transfers.txt are not read — the engine computes its
// own walking transfers (spec §4.4) and has no fare/capacity model.
//
// This is deliberately outside the isochrone engine's core: it is the
// "feed loader", specified only by the shape of data it delivers.
package feedload

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"isochrone/internal/model"
)

type agencyRow struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
}

type routeRow struct {
	ID        string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Color     string `csv:"route_color"`
}

type stopRow struct {
	ID   string  `csv:"stop_id"`
	Name string  `csv:"stop_name"`
	Lat  float64 `csv:"stop_lat"`
	Lon  float64 `csv:"stop_lon"`
}

type tripRow struct {
	ID        string `csv:"trip_id"`
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
	Headsign  string `csv:"trip_headsign"`
}

type stopTimeRow struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
}

type calendarRow struct {
	ServiceID string `csv:"service_id"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

type calendarDateRow struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

// requiredFiles names the CSV members that must be present in a GTFS
// zip. calendar.txt and calendar_dates.txt are not listed: each is read
// when present and optional on its own, but FromZip requires at least
// one of the two.
var requiredFiles = []string{"agency.txt", "routes.txt", "stops.txt", "trips.txt", "stop_times.txt"}

// FromZip parses a GTFS zip archive at path into a model.Feed.
// It fails fast (no partial feed is returned) on any invariant violation —
// these are programmer errors in the source feed, per spec §7.
func FromZip(path string) (*model.Feed, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	files := map[string]*zip.File{}
	for _, f := range r.File {
		files[f.Name] = f
	}

	for _, name := range requiredFiles {
		if files[name] == nil {
			return nil, fmt.Errorf("feed missing required file %s", name)
		}
	}
	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		return nil, fmt.Errorf("feed missing both calendar.txt and calendar_dates.txt")
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	b := &builder{}

	if err := b.loadAgencies(files["agency.txt"]); err != nil {
		return nil, fmt.Errorf("agency.txt: %w", err)
	}
	if err := b.loadRoutes(files["routes.txt"]); err != nil {
		return nil, fmt.Errorf("routes.txt: %w", err)
	}
	if err := b.loadStops(files["stops.txt"]); err != nil {
		return nil, fmt.Errorf("stops.txt: %w", err)
	}
	if files["calendar.txt"] != nil {
		if err := b.loadCalendar(files["calendar.txt"]); err != nil {
			return nil, fmt.Errorf("calendar.txt: %w", err)
		}
	}
	if files["calendar_dates.txt"] != nil {
		if err := b.loadCalendarDates(files["calendar_dates.txt"]); err != nil {
			return nil, fmt.Errorf("calendar_dates.txt: %w", err)
		}
	}
	if err := b.loadTrips(files["trips.txt"]); err != nil {
		return nil, fmt.Errorf("trips.txt: %w", err)
	}
	if err := b.loadStopTimes(files["stop_times.txt"]); err != nil {
		return nil, fmt.Errorf("stop_times.txt: %w", err)
	}

	return &b.feed, nil
}

func openCSV(f *zip.File) (io.ReadCloser, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	return rc, nil
}
