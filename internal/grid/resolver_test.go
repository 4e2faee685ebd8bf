package grid

import (
	"testing"

	"github.com/brk3/habitpanda/pkg/habit"
)

func TestResolve_DayOffWinsOverCooldownAndInactiveWeekday(t *testing.T) {
	// day off on a date that is also inside the cooldown window and on an
	// inactive weekday: the explicit override must win
	h := testHabit(func(h *habit.Habit) {
		h.CheckInType = habit.CheckInTypeLetterGrade
		h.CheckInCooldownDays = 3
		h.InactiveDaysOfWeek = habit.AllDays
	})
	today := habit.AddDays(windowStart, 10)
	checkIns := []habit.CheckIn{
		checkInAt(h, 4, habit.CheckInValueGradeA),
		checkInAt(h, 5, habit.CheckInValueDayOff),
	}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)

	if got := agg.Resolve(&h, 5); got != habit.DayStateDayOff {
		t.Fatalf("got %s want day_off", got)
	}
}

func TestResolve_RealCheckInSuppressesDayOff(t *testing.T) {
	h := testHabit(func(h *habit.Habit) { h.CheckInType = habit.CheckInTypeLetterGrade })
	today := habit.AddDays(windowStart, 10)
	checkIns := []habit.CheckIn{
		checkInAt(h, 5, habit.CheckInValueDayOff),
		checkInAt(h, 5, habit.CheckInValueGradeB),
	}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)

	if got := agg.Resolve(&h, 5); got != habit.DayStateActive {
		t.Fatalf("got %s want active", got)
	}
}

func TestResolve_NotStartedBoundary(t *testing.T) {
	h := testHabit()
	today := habit.AddDays(windowStart, 10)
	checkIns := []habit.CheckIn{checkInAt(h, 5, habit.CheckInValueSuccess)}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)

	if got := agg.Resolve(&h, 4); got != habit.DayStateNotStarted {
		t.Fatalf("offset 4: got %s want not_started", got)
	}
	if got := agg.Resolve(&h, 5); got != habit.DayStateActive {
		t.Fatalf("offset 5: got %s want active", got)
	}
}

func TestResolve_NoHistoryIsAlwaysNotStarted(t *testing.T) {
	h := testHabit()
	agg := Build([]habit.Habit{h}, nil, windowStart, windowStart)
	for _, offset := range []int{-10, 0, 3, 100} {
		if got := agg.Resolve(&h, offset); got != habit.DayStateNotStarted {
			t.Fatalf("offset %d: got %s want not_started", offset, got)
		}
	}
}

func TestResolve_CooldownBoundary(t *testing.T) {
	h := testHabit(func(h *habit.Habit) { h.CheckInCooldownDays = 2 })
	today := habit.AddDays(windowStart, 20)
	checkIns := []habit.CheckIn{checkInAt(h, 10, habit.CheckInValueSuccess)}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)

	for _, tt := range []struct {
		offset int
		want   habit.DayState
	}{
		{10, habit.DayStateActive},
		{11, habit.DayStateCooldown},
		{12, habit.DayStateCooldown},
		{13, habit.DayStateActive},
	} {
		if got := agg.Resolve(&h, tt.offset); got != tt.want {
			t.Fatalf("offset %d: got %s want %s", tt.offset, got, tt.want)
		}
	}
}

func TestResolve_CooldownDisabledAtZero(t *testing.T) {
	h := testHabit()
	today := habit.AddDays(windowStart, 20)
	checkIns := []habit.CheckIn{checkInAt(h, 10, habit.CheckInValueSuccess)}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)

	if got := agg.Resolve(&h, 11); got != habit.DayStateActive {
		t.Fatalf("got %s want active", got)
	}
}

func TestResolve_ScheduledInactiveUsesCalendarWeekday(t *testing.T) {
	// window starts on a Sunday, so offset 6 is the first Saturday
	h := testHabit(func(h *habit.Habit) { h.InactiveDaysOfWeek = habit.Weekends })
	today := habit.AddDays(windowStart, 20)
	checkIns := []habit.CheckIn{checkInAt(h, 0, habit.CheckInValueSuccess)}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)

	if got := agg.Resolve(&h, 6); got != habit.DayStateScheduledInactive {
		t.Fatalf("saturday: got %s want scheduled_inactive", got)
	}
	if got := agg.Resolve(&h, 13); got != habit.DayStateScheduledInactive {
		t.Fatalf("saturday a week on: got %s want scheduled_inactive", got)
	}
	if got := agg.Resolve(&h, 10); got != habit.DayStateActive {
		t.Fatalf("midweek: got %s want active", got)
	}
}

func TestResolve_EndToEndScenario(t *testing.T) {
	// frequency 5/wk, weekends off, no cooldown; check-ins 8 and 4 days ago
	// (twice), and today
	todayOffset := 12 // a Friday relative to the Sunday window start
	h := testHabit(func(h *habit.Habit) { h.InactiveDaysOfWeek = habit.Weekends })
	today := habit.AddDays(windowStart, todayOffset)
	checkIns := []habit.CheckIn{
		checkInAt(h, todayOffset-8, habit.CheckInValueSuccess),
		checkInAt(h, todayOffset-4, habit.CheckInValueSuccess),
		checkInAt(h, todayOffset-4, habit.CheckInValueSuccess),
		checkInAt(h, todayOffset, habit.CheckInValueSuccess),
	}
	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)
	days := agg.ForHabit(h.UUID)

	if got := agg.Resolve(&h, todayOffset); got != habit.DayStateActive {
		t.Fatalf("today: got %s want active", got)
	}
	if got := days.Count(todayOffset); got != 1 {
		t.Fatalf("today count: got %d want 1", got)
	}
	if got := agg.Resolve(&h, todayOffset-4); got != habit.DayStateActive {
		t.Fatalf("today-4: got %s want active", got)
	}
	if got := days.Count(todayOffset - 4); got != 2 {
		t.Fatalf("today-4 count: got %d want 2", got)
	}
	// offset 6 is a Saturday after the first check-in (offset 4), no check-in
	if got := agg.Resolve(&h, 6); got != habit.DayStateScheduledInactive {
		t.Fatalf("saturday: got %s want scheduled_inactive", got)
	}
}
