package ledger

import (
	"strings"
	"time"
)

// Layouts seen in the document store, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// parseDate tries the known layouts. A zero time plus false means the
// value is unusable and the caller should drop the event with a warning.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveDate walks the fallback chain and returns the first parseable
// candidate: explicit payment date, then delivery date, then record date.
func resolveDate(candidates ...string) (time.Time, bool) {
	for _, c := range candidates {
		if t, ok := parseDate(c); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayStart truncates to midnight in the timestamp's location.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDay reduces a timestamp to its calendar date, read in the
// timestamp's own location, as a zone-free key. Date-only record strings
// have no zone of their own, so range membership must compare dates, not
// instants: a sale dated 2025-03-10 belongs to the March 10 corte no
// matter which zone the query or the parser happened to use.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
