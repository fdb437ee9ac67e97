package matching

import "time"

// TimeInterval is an inclusive absolute time range in UTC. Start never
// exceeds End once built through NewTimeInterval.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// NewTimeInterval builds an interval, swapping the bounds when the source
// record delivered them reversed.
func NewTimeInterval(start, end time.Time) TimeInterval {
	if end.Before(start) {
		start, end = end, start
	}
	return TimeInterval{Start: start.UTC(), End: end.UTC()}
}

// Duration returns the interval length.
func (iv TimeInterval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Contains reports whether t falls within the interval, bounds included.
func (iv TimeInterval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Encloses reports whether other lies entirely within the interval.
func (iv TimeInterval) Encloses(other TimeInterval) bool {
	return iv.Contains(other.Start) && iv.Contains(other.End)
}

// CommittedInterval is the time range of a work order already assigned to the
// provider, against which new candidates are checked.
type CommittedInterval struct {
	WorkOrderID    string
	Interval       TimeInterval
	EstimatedHours float64
}

// EffectiveHours returns the committed labor estimate, falling back to the
// interval length when the marketplace omitted an estimate.
func (c CommittedInterval) EffectiveHours() float64 {
	if c.EstimatedHours > 0 {
		return c.EstimatedHours
	}
	return c.Interval.Duration().Hours()
}
