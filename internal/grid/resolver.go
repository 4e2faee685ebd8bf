package grid

import (
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
)

// ResolveDayState classifies one calendar date of one habit. The rules form
// a strict priority chain, first match wins:
//
//  1. NotStarted: the date precedes the habit's first check-in ever.
//  2. DayOff: an explicit day-off check-in exists for the date. A real
//     check-in on the same date suppresses the day off entirely (the write
//     path keeps the two mutually exclusive).
//  3. Cooldown: the date falls in the rest window that follows the last
//     qualifying check-in. Checked before the weekday rule so a
//     just-completed habit doesn't render as scheduled-inactive.
//  4. ScheduledInactive: the date's weekday is one of the habit's inactive
//     days. The weekday comes from the absolute calendar date, never from
//     offset arithmetic.
//  5. Active: everything else, including tracked days with zero check-ins.
//
// date is the absolute calendar date being classified and dateOffset its
// offset from the aggregate's window start. A habit with no history resolves
// every date as NotStarted; that is not an error.
func ResolveDayState(h *habit.Habit, days *HabitDays, date time.Time, dateOffset int) habit.DayState {
	firstOffset, hasFirst := days.FirstCheckInOffset()
	if !hasFirst || dateOffset < firstOffset {
		return habit.DayStateNotStarted
	}

	if days.HasDayOff(dateOffset) && days.Count(dateOffset) == 0 {
		return habit.DayStateDayOff
	}

	if h.CheckInCooldownDays > 0 {
		if lastOffset, ok := days.LastQualifyingCheckInOffset(); ok {
			if dateOffset > lastOffset && dateOffset <= lastOffset+h.CheckInCooldownDays {
				return habit.DayStateCooldown
			}
		}
	}

	if h.InactiveDaysOfWeek.Contains(habit.WeekdayOf(date)) {
		return habit.DayStateScheduledInactive
	}

	return habit.DayStateActive
}

// Resolve classifies the date at dateOffset from the window start.
func (a *Aggregate) Resolve(h *habit.Habit, dateOffset int) habit.DayState {
	date := habit.AddDays(a.windowStart, dateOffset)
	return ResolveDayState(h, a.ForHabit(h.UUID), date, dateOffset)
}
