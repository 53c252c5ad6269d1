package feedload

import (
	"archive/zip"
	"fmt"
	"sort"

	"github.com/gocarina/gocsv"

	"isochrone/internal/model"
)

// builder accumulates parsed rows and the identifier sets needed to
// validate foreign keys across files, then assembles model.Feed.
type builder struct {
	feed model.Feed

	stopIDs    map[string]bool
	routeIDs   map[string]bool
	tripIDs    map[string]bool
	serviceIDs map[string]bool
}

func (b *builder) loadAgencies(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	var rows []*agencyRow
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	for _, r := range rows {
		b.feed.Agencies = append(b.feed.Agencies, model.Agency{
			ID: r.ID, Name: r.Name, URL: r.URL, Timezone: r.Timezone,
		})
	}
	return nil
}

func (b *builder) loadRoutes(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	var rows []*routeRow
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	b.routeIDs = make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			return fmt.Errorf("empty route_id")
		}
		if b.routeIDs[r.ID] {
			return fmt.Errorf("duplicate route_id %q", r.ID)
		}
		b.routeIDs[r.ID] = true
		b.feed.Routes = append(b.feed.Routes, model.Route{
			ID: r.ID, ShortName: r.ShortName, LongName: r.LongName, Color: r.Color,
		})
	}
	return nil
}

func (b *builder) loadStops(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	var rows []*stopRow
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	b.stopIDs = make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			return fmt.Errorf("empty stop_id")
		}
		if b.stopIDs[r.ID] {
			return fmt.Errorf("duplicate stop_id %q", r.ID)
		}
		b.stopIDs[r.ID] = true
		b.feed.Stops = append(b.feed.Stops, model.Stop{
			ID: r.ID, Name: r.Name, Lat: r.Lat, Lon: r.Lon,
		})
	}
	return nil
}

func (b *builder) loadCalendar(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	var rows []*calendarRow
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if b.serviceIDs == nil {
		b.serviceIDs = make(map[string]bool, len(rows))
	}
	for _, r := range rows {
		if r.ServiceID == "" {
			return fmt.Errorf("empty service_id")
		}
		b.serviceIDs[r.ServiceID] = true
		b.feed.Calendar = append(b.feed.Calendar, model.CalendarEntry{
			ServiceID: r.ServiceID,
			Weekday: [7]bool{
				r.Monday == 1, r.Tuesday == 1, r.Wednesday == 1,
				r.Thursday == 1, r.Friday == 1, r.Saturday == 1, r.Sunday == 1,
			},
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}
	return nil
}

func (b *builder) loadCalendarDates(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	var rows []*calendarDateRow
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if b.serviceIDs == nil {
		b.serviceIDs = make(map[string]bool, len(rows))
	}
	for _, r := range rows {
		kind := model.ExceptionKind(r.ExceptionType)
		if kind != model.ExceptionAdd && kind != model.ExceptionRemove {
			return fmt.Errorf("invalid exception_type %d for service %q", r.ExceptionType, r.ServiceID)
		}
		b.serviceIDs[r.ServiceID] = true
		b.feed.CalendarDates = append(b.feed.CalendarDates, model.CalendarException{
			ServiceID: r.ServiceID, Date: r.Date, Kind: kind,
		})
	}
	return nil
}

func (b *builder) loadTrips(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	var rows []*tripRow
	if err := gocsv.Unmarshal(rc, &rows); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	b.tripIDs = make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			return fmt.Errorf("empty trip_id")
		}
		if b.tripIDs[r.ID] {
			return fmt.Errorf("duplicate trip_id %q", r.ID)
		}
		if !b.routeIDs[r.RouteID] {
			return fmt.Errorf("trip %q references unknown route_id %q", r.ID, r.RouteID)
		}
		if !b.serviceIDs[r.ServiceID] {
			return fmt.Errorf("trip %q references unknown service_id %q", r.ID, r.ServiceID)
		}
		b.tripIDs[r.ID] = true
		b.feed.Trips = append(b.feed.Trips, model.Trip{
			ID: r.ID, RouteID: r.RouteID, ServiceID: r.ServiceID, Headsign: r.Headsign,
		})
	}
	return nil
}

func (b *builder) loadStopTimes(f *zip.File) error {
	rc, err := openCSV(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	i := 0
	err = gocsv.UnmarshalToCallbackWithError(rc, func(r *stopTimeRow) error {
		i++
		if !b.tripIDs[r.TripID] {
			return fmt.Errorf("row %d: unknown trip_id %q", i, r.TripID)
		}
		if !b.stopIDs[r.StopID] {
			return fmt.Errorf("row %d: unknown stop_id %q", i, r.StopID)
		}
		arrival, err := ParseClock(r.ArrivalTime)
		if err != nil {
			return fmt.Errorf("row %d arrival_time: %w", i, err)
		}
		departure, err := ParseClock(r.DepartureTime)
		if err != nil {
			return fmt.Errorf("row %d departure_time: %w", i, err)
		}
		if arrival > departure {
			return fmt.Errorf("row %d: arrival_secs %d > departure_secs %d for trip %q", i, arrival, departure, r.TripID)
		}
		b.feed.StopTimes = append(b.feed.StopTimes, model.StopTime{
			TripID: r.TripID, StopID: r.StopID, StopSequence: r.StopSequence,
			ArrivalSecs: arrival, DepartureSecs: departure,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	sort.SliceStable(b.feed.StopTimes, func(i, j int) bool {
		a, c := b.feed.StopTimes[i], b.feed.StopTimes[j]
		if a.TripID != c.TripID {
			return a.TripID < c.TripID
		}
		return a.StopSequence < c.StopSequence
	})

	return validateStopSequence(b.feed.StopTimes)
}

// validateStopSequence enforces spec §3: stop_sequence strictly increasing
// per trip, and arrival/departure monotone non-decreasing in stop_sequence.
func validateStopSequence(stopTimes []model.StopTime) error {
	var prevTrip string
	var prevSeq, prevArrival, prevDeparture int
	for _, st := range stopTimes {
		if st.TripID != prevTrip {
			prevTrip = st.TripID
			prevSeq = st.StopSequence
			prevArrival = st.ArrivalSecs
			prevDeparture = st.DepartureSecs
			continue
		}
		if st.StopSequence <= prevSeq {
			return fmt.Errorf("trip %q: stop_sequence %d does not strictly increase after %d", st.TripID, st.StopSequence, prevSeq)
		}
		if st.ArrivalSecs < prevArrival || st.DepartureSecs < prevDeparture {
			return fmt.Errorf("trip %q: arrival/departure not monotone at stop_sequence %d", st.TripID, st.StopSequence)
		}
		prevSeq = st.StopSequence
		prevArrival = st.ArrivalSecs
		prevDeparture = st.DepartureSecs
	}
	return nil
}
