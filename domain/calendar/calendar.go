package calendar

import (
	"fmt"
	"math"
	"time"
)

// Clock provides the current wall-clock time. Production code uses
// SystemClock; tests inject a fixed clock to pin "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// FixedClock returns a Clock that always reports the given instant
func FixedClock(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Calendar answers "which calendar day is this" questions in the fixed
// business timezone, independent of the server's locale. All elapsed-day
// and weekend decisions in the system go through it.
type Calendar struct {
	loc   *time.Location
	clock Clock
}

// New creates a Calendar for the given IANA timezone name
func New(timezone string, clock Clock) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load business timezone %q: %w", timezone, err)
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Calendar{loc: loc, clock: clock}, nil
}

// Location returns the business timezone location
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the business timezone
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Today returns midnight of the current date in the business timezone
func (c *Calendar) Today() time.Time {
	return c.StartOfDay(c.Now())
}

// StartOfDay returns midnight of t's date in the business timezone
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// IsWeekend reports whether t falls on Saturday or Sunday in the business timezone
func (c *Calendar) IsWeekend(t time.Time) bool {
	wd := t.In(c.loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay shifts weekend instants forward to the following Monday:
// Saturday moves +2 days, Sunday +1 day. Weekday instants are returned
// unchanged.
func (c *Calendar) NextBusinessDay(t time.Time) time.Time {
	switch t.In(c.loc).Weekday() {
	case time.Saturday:
		return t.In(c.loc).AddDate(0, 0, 2)
	case time.Sunday:
		return t.In(c.loc).AddDate(0, 0, 1)
	default:
		return t
	}
}

// DaysBetween returns the number of calendar days from `from` to `to` in
// the business timezone. The result is negative when `to` precedes `from`.
func (c *Calendar) DaysBetween(from, to time.Time) int {
	a := c.StartOfDay(from)
	b := c.StartOfDay(to)
	// Rounding absorbs DST transitions, which make some days 23 or 25 hours.
	return int(math.Round(b.Sub(a).Hours() / 24))
}
