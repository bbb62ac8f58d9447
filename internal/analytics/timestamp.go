package analytics

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ErrUnparseableTimestamp is returned when no known timestamp format matches.
var ErrUnparseableTimestamp = errors.New("unparseable timestamp")

// isoLayouts are the generic date-time formats the PDA fleet is known to emit,
// tried in order. Layouts without a zone are interpreted as local wall-clock
// time; the site runs in a single timezone.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// dmyPattern matches the legacy ALMA export format DD/MM/YYYY HH:MM[:SS].
var dmyPattern = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}):(\d{2})(?::(\d{2}))?`)

// NormalizeTimestamp parses a raw timestamp string from a device or import
// source into a canonical UTC instant. Generic ISO parsing is attempted
// first, then the DD/MM/YYYY fallback. An empty or unrecognized value
// returns ErrUnparseableTimestamp.
func NormalizeTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrUnparseableTimestamp
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.UTC(), nil
		}
	}

	m := dmyPattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, ErrUnparseableTimestamp
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec := 0
	if m[6] != "" {
		sec, _ = strconv.Atoi(m[6])
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local)
	if t.Day() != day || int(t.Month()) != month {
		// Dates like 31/02 roll over in time.Date; treat them as invalid.
		return time.Time{}, ErrUnparseableTimestamp
	}

	return t.UTC(), nil
}
