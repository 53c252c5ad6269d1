package feedload

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock decodes a GTFS "HH:MM:SS" string into seconds since midnight.
// HH may exceed 23 for trips that continue past midnight of the service day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("expected HH:MM:SS, got %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid second in %q: %w", s, err)
	}
	if sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid second in %q", s)
	}
	if h < 0 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	return h*3600 + m*60 + sec, nil
}

// FormatClock is the inverse of ParseClock, re-rendering seconds since
// midnight as "HH:MM:SS" with a zero-padded hour.
func FormatClock(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
