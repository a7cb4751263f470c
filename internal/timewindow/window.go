// Package timewindow turns instants into the calendar days and Monday-to-Sunday
// weeks a user perceives, and orders schedule entries within and across days.
//
// The server clock is UTC. Local day boundaries are approximated by subtracting a
// single fixed offset from every instant; the Window value owns that shift, so
// callers always pass raw instants and the shift is applied exactly once.
package timewindow

import "time"

// DefaultOffset is subtracted from instants before taking their calendar date.
const DefaultOffset = 4 * time.Hour

// Window converts instants to local calendar dates using a fixed offset.
type Window struct {
	Offset time.Duration
}

// New creates a Window that subtracts offset from instants
func New(offset time.Duration) *Window {
	return &Window{Offset: offset}
}

// DayBucketKey returns the local calendar date an instant belongs to.
func (w *Window) DayBucketKey(instant time.Time) Date {
	return DateOf(instant.UTC().Add(-w.Offset))
}

// Today is the local calendar date of now.
func (w *Window) Today(now time.Time) Date {
	return w.DayBucketKey(now)
}

// WeekWindow returns the Monday and Sunday of the week containing the local
// date of now, shifted by weekOffset whole weeks.
func (w *Window) WeekWindow(now time.Time, weekOffset int) (start, end Date) {
	today := w.DayBucketKey(now)
	sinceMonday := (int(today.Weekday()) + 6) % 7
	start = today.AddDays(-sinceMonday + 7*weekOffset)
	end = start.AddDays(6)
	return start, end
}

// Contains reports whether d lies within [start, end]
func Contains(start, end, d Date) bool {
	return !d.Before(start) && !d.After(end)
}
