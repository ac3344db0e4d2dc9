package domain

import "time"

// CalendarEntry is one capacity counter for a resource on one date.
// Entries are created lazily on first touch with the resource's static
// capacity and must never go below zero.
type CalendarEntry struct {
	ResourceID     string
	Date           time.Time
	AvailableSlots int
}

// Day truncates t to midnight UTC so that calendar keys compare cleanly.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns every calendar day from from to to, both inclusive.
func DaysBetween(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
