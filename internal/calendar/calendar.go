// Package calendar resolves whether a GTFS service runs on a given
// date (spec §4.5), combining the weekday mask with ADD/REMOVE
// exceptions, and offers a per-request memoizing wrapper so the
// isochrone search pays the resolution cost at most once per
// (service, date) pair.
package calendar

import (
	"time"

	"isochrone/internal/model"
)

const dateLayout = "20060102"

// Resolver answers service_active(service, date) against a feedstore's
// calendar and calendar-exception tables.
type Resolver struct {
	entries    map[string]model.CalendarEntry
	exceptions map[string]map[string]model.ExceptionKind // serviceID -> date -> kind
}

// NewResolver builds a Resolver from the feed's calendar and
// calendar_dates tables.
func NewResolver(entries []model.CalendarEntry, exceptions []model.CalendarException) *Resolver {
	r := &Resolver{
		entries:    make(map[string]model.CalendarEntry, len(entries)),
		exceptions: make(map[string]map[string]model.ExceptionKind),
	}
	for _, e := range entries {
		r.entries[e.ServiceID] = e
	}
	for _, ex := range exceptions {
		byDate, ok := r.exceptions[ex.ServiceID]
		if !ok {
			byDate = make(map[string]model.ExceptionKind)
			r.exceptions[ex.ServiceID] = byDate
		}
		byDate[ex.Date] = ex.Kind
	}
	return r
}

// ServiceActive implements the five-step resolution in spec §4.5.
func (r *Resolver) ServiceActive(service, date string) bool {
	entry, ok := r.entries[service]
	if ok && (date < entry.StartDate || date > entry.EndDate) {
		return false
	}

	var candidate bool
	if ok {
		if wd, err := weekdayIndex(date); err == nil {
			candidate = entry.Weekday[wd]
		}
	}

	if byDate, ok := r.exceptions[service]; ok {
		if kind, ok := byDate[date]; ok {
			switch kind {
			case model.ExceptionAdd:
				return true
			case model.ExceptionRemove:
				return false
			}
		}
	}

	return candidate
}

// weekdayIndex returns date's weekday as 0=Monday..6=Sunday, matching
// model.CalendarEntry.Weekday's ordering.
func weekdayIndex(date string) (int, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, err
	}
	// time.Weekday is 0=Sunday..6=Saturday; rotate to 0=Monday..6=Sunday.
	return (int(t.Weekday()) + 6) % 7, nil
}

// MemoResolver wraps a Resolver with a per-request memo so the search
// consults the underlying resolution at most once per (service, date)
// pair (spec §4.5: "memoize per request to bound cost").
type MemoResolver struct {
	base  *Resolver
	cache map[string]map[string]bool
}

// NewMemo returns a fresh, empty-cache wrapper around base. Callers
// construct one per isochrone search request.
func NewMemo(base *Resolver) *MemoResolver {
	return &MemoResolver{base: base, cache: make(map[string]map[string]bool)}
}

// ServiceActive returns the memoized result of base.ServiceActive.
func (m *MemoResolver) ServiceActive(service, date string) bool {
	byDate, ok := m.cache[service]
	if !ok {
		byDate = make(map[string]bool)
		m.cache[service] = byDate
	}
	if v, ok := byDate[date]; ok {
		return v
	}
	v := m.base.ServiceActive(service, date)
	byDate[date] = v
	return v
}
