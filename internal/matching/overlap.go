package matching

// FindOverlap checks a candidate interval against the committed set and
// returns the first conflicting work order in input order.
//
// Exact windows conflict on any touching: a candidate starting inside, ending
// inside, or fully containing a committed interval. Hours and between windows
// only conflict on nesting (candidate inside committed, or committed inside
// candidate); a partial, non-nesting overlap is allowed for those modes
// because the provider can still arrive within the free part of the range.
func FindOverlap(candidate TimeInterval, mode WindowMode, committed []CommittedInterval) (CommittedInterval, bool) {
	for _, item := range committed {
		if overlaps(candidate, item.Interval, mode) {
			return item, true
		}
	}
	return CommittedInterval{}, false
}

func overlaps(candidate, booked TimeInterval, mode WindowMode) bool {
	switch mode {
	case ModeExact:
		return booked.Contains(candidate.Start) ||
			booked.Contains(candidate.End) ||
			candidate.Encloses(booked)
	case ModeHours, ModeBetween:
		return booked.Encloses(candidate) || candidate.Encloses(booked)
	}
	return false
}
