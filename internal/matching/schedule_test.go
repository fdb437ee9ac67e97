package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func workweekRules() CalendarRules {
	return CalendarRules{
		Location:  time.UTC,
		WorkStart: ClockTime{Hour: 9},
		WorkEnd:   ClockTime{Hour: 17},
		OffDays:   map[time.Weekday]bool{time.Sunday: true},
	}
}

// 2025-03-09 is a Sunday, 2025-03-10 a Monday.
func day(d, hour, min int) time.Time {
	return time.Date(2025, time.March, d, hour, min, 0, 0, time.UTC)
}

func TestScheduleSatisfiedOffDay(t *testing.T) {
	rules := workweekRules()

	sunday := ServiceWindow{Mode: ModeExact, Start: day(9, 10, 0), End: day(9, 11, 0)}
	assert.False(t, ScheduleSatisfied(sunday, rules, nil))

	monday := ServiceWindow{Mode: ModeExact, Start: day(10, 10, 0), End: day(10, 11, 0)}
	assert.True(t, ScheduleSatisfied(monday, rules, nil))
}

func TestScheduleSatisfiedMultiDayWindowTouchingWorkingDay(t *testing.T) {
	rules := workweekRules()

	// Saturday through Monday touches two working days even with Sunday off.
	window := ServiceWindow{Mode: ModeBetween, Start: day(8, 9, 0), End: day(10, 17, 0)}
	assert.True(t, ScheduleSatisfied(window, rules, nil))

	rules.OffDays = map[time.Weekday]bool{
		time.Saturday: true, time.Sunday: true, time.Monday: true,
	}
	assert.False(t, ScheduleSatisfied(window, rules, nil))
}

func TestScheduleSatisfiedPlannedTimeOff(t *testing.T) {
	rules := workweekRules()
	off := NewTimeInterval(day(10, 0, 0), day(14, 23, 59))
	rules.TimeOff = &off

	enclosed := ServiceWindow{Mode: ModeBetween, Start: day(11, 9, 0), End: day(12, 17, 0)}
	assert.False(t, ScheduleSatisfied(enclosed, rules, nil))

	// Partial overlap with the time off passes this check.
	partial := ServiceWindow{Mode: ModeBetween, Start: day(13, 9, 0), End: day(17, 17, 0)}
	assert.True(t, ScheduleSatisfied(partial, rules, nil))
}

func TestScheduleSatisfiedOverlapDelegation(t *testing.T) {
	rules := workweekRules()
	committed := []CommittedInterval{
		{WorkOrderID: "wo-9", Interval: NewTimeInterval(day(10, 10, 0), day(10, 12, 0))},
	}

	window := ServiceWindow{Mode: ModeExact, Start: day(10, 10, 30), End: day(10, 11, 0)}
	assert.False(t, ScheduleSatisfied(window, rules, committed))
	assert.True(t, ScheduleSatisfied(window, rules, nil))
}

func TestScheduleSatisfiedWorkingWindow(t *testing.T) {
	rules := workweekRules()

	early := ServiceWindow{Mode: ModeHours, Start: day(10, 7, 0), End: day(10, 8, 0)}
	assert.False(t, ScheduleSatisfied(early, rules, nil))

	late := ServiceWindow{Mode: ModeHours, Start: day(10, 16, 0), End: day(10, 18, 0)}
	assert.False(t, ScheduleSatisfied(late, rules, nil))

	inside := ServiceWindow{Mode: ModeHours, Start: day(10, 9, 0), End: day(10, 17, 0)}
	assert.True(t, ScheduleSatisfied(inside, rules, nil))

	// Between windows carry no daily clock constraint.
	between := ServiceWindow{Mode: ModeBetween, Start: day(10, 7, 0), End: day(10, 8, 0)}
	assert.True(t, ScheduleSatisfied(between, rules, nil))
}

func TestScheduleSatisfiedOvernightWorkingWindow(t *testing.T) {
	rules := CalendarRules{
		Location:  time.UTC,
		WorkStart: ClockTime{Hour: 22},
		WorkEnd:   ClockTime{Hour: 6},
	}

	night := ServiceWindow{Mode: ModeExact, Start: day(10, 23, 30), End: day(11, 0, 30)}
	assert.True(t, ScheduleSatisfied(night, rules, nil))

	morning := ServiceWindow{Mode: ModeExact, Start: day(10, 7, 0), End: day(10, 8, 0)}
	assert.False(t, ScheduleSatisfied(morning, rules, nil))
}

func TestScheduleSatisfiedProviderTimezone(t *testing.T) {
	// 15:00 UTC is 10:00 in UTC-5; the provider's local clock decides.
	rules := workweekRules()
	rules.Location = time.FixedZone("UTC-5", -5*3600)

	window := ServiceWindow{Mode: ModeHours, Start: day(10, 15, 0), End: day(10, 16, 0)}
	assert.True(t, ScheduleSatisfied(window, rules, nil))

	// The same instants read as 18:00 local in UTC+3 and fall outside 9-17.
	rules.Location = time.FixedZone("UTC+3", 3*3600)
	assert.False(t, ScheduleSatisfied(window, rules, nil))
}

func TestScheduleSatisfiedUnsupportedMode(t *testing.T) {
	rules := workweekRules()
	window := ServiceWindow{Mode: "flexible", Start: day(10, 10, 0), End: day(10, 11, 0)}
	assert.False(t, ScheduleSatisfied(window, rules, nil))
}

func TestServiceWindowIntervalDerivation(t *testing.T) {
	explicit := ServiceWindow{Mode: ModeHours, Start: day(10, 9, 0), End: day(10, 12, 0), EstimatedHours: 8}
	assert.Equal(t, day(10, 12, 0), explicit.Interval().End, "explicit end wins over the estimate")

	derived := ServiceWindow{Mode: ModeBetween, Start: day(10, 9, 0), EstimatedHours: 3}
	assert.Equal(t, day(10, 12, 0), derived.Interval().End)

	instant := ServiceWindow{Mode: ModeExact, Start: day(10, 9, 0)}
	assert.Equal(t, instant.Interval().Start, instant.Interval().End)
}
