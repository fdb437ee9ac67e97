package matching

import (
	"time"
)

// WindowMode describes how a work order's service window is scheduled.
type WindowMode string

const (
	// ModeExact fixes a single arrival instant.
	ModeExact WindowMode = "exact"
	// ModeHours bounds the visit to a daily clock range.
	ModeHours WindowMode = "hours"
	// ModeBetween allows any time inside a free-form date range.
	ModeBetween WindowMode = "between"
)

// Valid reports whether the mode is one the engine understands. Unsupported
// modes are rejected, not treated as errors.
func (m WindowMode) Valid() bool {
	switch m {
	case ModeExact, ModeHours, ModeBetween:
		return true
	}
	return false
}

// ServiceWindow is the scheduling envelope of a candidate work order.
// Location is the work order's own declared timezone, which may differ from
// the provider's.
type ServiceWindow struct {
	Mode           WindowMode
	Start          time.Time
	End            time.Time // zero when the marketplace sent no explicit end
	EstimatedHours float64
	Location       *time.Location
}

// Interval returns the window's effective absolute range. An explicit end
// wins; otherwise the end is derived as start plus the labor estimate, which
// for an exact window with no estimate collapses to a zero-width instant.
func (w ServiceWindow) Interval() TimeInterval {
	if !w.End.IsZero() {
		return NewTimeInterval(w.Start, w.End)
	}
	end := w.Start.Add(durationFromHours(w.EstimatedHours))
	return NewTimeInterval(w.Start, end)
}

// In returns the work order's declared timezone, defaulting to UTC.
func (w ServiceWindow) In() *time.Location {
	if w.Location != nil {
		return w.Location
	}
	return time.UTC
}

// ClockTime is a local time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// Minutes returns the clock time as minutes past midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On anchors the clock time to the calendar day of t in the given location.
func (c ClockTime) On(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// CalendarRules are a provider's time constraints, loaded once per evaluation
// from the cron configuration and read-only afterwards.
type CalendarRules struct {
	Location    *time.Location
	WorkStart   ClockTime
	WorkEnd     ClockTime // earlier than WorkStart means an overnight shift
	OffDays     map[time.Weekday]bool
	TimeOff     *TimeInterval
}

// In returns the provider's timezone, defaulting to UTC.
func (r CalendarRules) In() *time.Location {
	if r.Location != nil {
		return r.Location
	}
	return time.UTC
}

// IsOffDay reports whether the provider does not work on the given weekday.
func (r CalendarRules) IsOffDay(day time.Weekday) bool {
	return r.OffDays[day]
}

func durationFromHours(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
