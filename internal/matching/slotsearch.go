package matching

import "time"

// slotSearchLimit caps the day-by-day search. A provider with no free days
// (for example, every weekday marked off) would otherwise never terminate;
// reporting "no slot" after the cap is the expected outcome, not an error.
const slotSearchLimit = 50

// FindNextSlot searches forward from a rejected candidate window for the
// nearest interval that passes every schedule check. It returns false when
// the iteration budget is exhausted, in which case the caller must not
// propose a schedule counter-offer.
//
// now is supplied by the caller so the search stays a pure function of its
// inputs: a start on or before today is first advanced to tomorrow.
func FindNextSlot(now time.Time, window ServiceWindow, rules CalendarRules, committed []CommittedInterval) (TimeInterval, bool) {
	loc := rules.In()
	seed := window.Interval()

	hours := window.EstimatedHours
	if hours <= 0 {
		hours = seed.Duration().Hours()
	}
	if hours <= 0 {
		hours = 1
	}
	dur := durationFromHours(hours)

	start := seed.Start
	if !startsAfterToday(start, now, loc) {
		local := start.In(loc)
		today := now.In(loc)
		start = time.Date(today.Year(), today.Month(), today.Day()+1,
			local.Hour(), local.Minute(), 0, 0, loc)
	}
	end := start.Add(dur)

	for i := 0; i < slotSearchLimit; i++ {
		candidate := NewTimeInterval(start, end)
		switch {
		case !withinWorkingWindow(candidate, window.Mode, rules),
			!touchesWorkingDay(candidate, rules),
			!outsideTimeOff(candidate, rules):
			// Move to the next day at the working-window start; the labor
			// estimate carries the end into the following day when the
			// working window spans midnight.
			start = rules.WorkStart.On(start.In(loc).AddDate(0, 0, 1), loc)
			end = start.Add(dur)
		default:
			conflict, overlapped := FindOverlap(candidate, window.Mode, committed)
			if !overlapped {
				return candidate, true
			}
			// Jump past the conflicting assignment by the combined labor
			// estimate of both work orders.
			shift := durationFromHours(hours + conflict.EffectiveHours())
			start = start.Add(shift)
			end = end.Add(shift)
		}
	}
	return TimeInterval{}, false
}

func startsAfterToday(start, now time.Time, loc *time.Location) bool {
	s := start.In(loc)
	n := now.In(loc)
	sy, sm, sd := s.Date()
	ny, nm, nd := n.Date()
	if sy != ny {
		return sy > ny
	}
	if sm != nm {
		return sm > nm
	}
	return sd > nd
}
