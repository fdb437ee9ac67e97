package matching

import "time"

// ScheduleSatisfied validates a candidate service window against the
// provider's calendar and committed work. The four checks short-circuit in a
// fixed order: off-day, planned time off, overlap, working window. All must
// pass.
func ScheduleSatisfied(window ServiceWindow, rules CalendarRules, committed []CommittedInterval) bool {
	if !window.Mode.Valid() {
		return false
	}
	iv := window.Interval()
	if !touchesWorkingDay(iv, rules) {
		return false
	}
	if !outsideTimeOff(iv, rules) {
		return false
	}
	if _, overlapped := FindOverlap(iv, window.Mode, committed); overlapped {
		return false
	}
	return withinWorkingWindow(iv, window.Mode, rules)
}

// touchesWorkingDay fails only when every calendar day the interval touches,
// in the provider's timezone, is an off day. A multi-day window spanning at
// least one working day passes.
func touchesWorkingDay(iv TimeInterval, rules CalendarRules) bool {
	loc := rules.In()
	start := iv.Start.In(loc)
	end := iv.End.In(loc)

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	for !day.After(last) {
		if !rules.IsOffDay(day.Weekday()) {
			return true
		}
		day = day.AddDate(0, 0, 1)
	}
	return false
}

// outsideTimeOff rejects a window only when it is fully enclosed by the
// provider's planned time off, bounds inclusive. Partial overlap passes.
func outsideTimeOff(iv TimeInterval, rules CalendarRules) bool {
	if rules.TimeOff == nil {
		return true
	}
	return !rules.TimeOff.Encloses(iv)
}

// withinWorkingWindow projects the provider's daily working window and the
// candidate's clock times onto a shared reference day and checks containment.
// A working window whose end clock precedes its start clock spans midnight,
// and a candidate whose end clock precedes its start clock is rolled into the
// next day the same way. Between windows carry no daily constraint.
func withinWorkingWindow(iv TimeInterval, mode WindowMode, rules CalendarRules) bool {
	switch mode {
	case ModeBetween:
		return true
	case ModeExact, ModeHours:
	default:
		return false
	}

	loc := rules.In()
	start := iv.Start.In(loc)
	end := iv.End.In(loc)

	winStart := rules.WorkStart.Minutes()
	winEnd := rules.WorkEnd.Minutes()
	if winEnd < winStart {
		winEnd += 24 * 60
	}

	candStart := start.Hour()*60 + start.Minute()
	candEnd := end.Hour()*60 + end.Minute()
	if candEnd < candStart {
		candEnd += 24 * 60
	}

	return candStart >= winStart && candEnd <= winEnd
}
