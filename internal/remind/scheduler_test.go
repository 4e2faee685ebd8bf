package remind

import (
	"fmt"
	"testing"
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

// 2024-03-20 is a Wednesday (weekday offset 3).
var wednesdayNoon = time.Date(2024, 3, 20, 12, 0, 0, 0, time.Local)

func testHabitAndMap() (habit.Habit, map[uuid.UUID]habit.Habit) {
	h := habit.Habit{
		UUID:             uuid.New(),
		Name:             "stretch",
		FrequencyPerWeek: 3,
		CheckInType:      habit.CheckInTypeBinary,
	}
	return h, map[uuid.UUID]habit.Habit{h.UUID: h}
}

func reminderFor(h habit.Habit, hour, minute int, days habit.WeekdaySet) habit.Reminder {
	return habit.Reminder{
		UUID:          uuid.New(),
		HabitUUID:     h.UUID,
		Hour:          hour,
		Minute:        minute,
		FrequencyDays: days,
	}
}

func TestNext7DayWeekdayLoop(t *testing.T) {
	tests := []struct {
		start int
		want  []int
	}{
		{0, []int{0, 1, 2, 3, 4, 5, 6}},
		{3, []int{3, 4, 5, 6, 0, 1, 2}},
		{6, []int{6, 0, 1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		got := Next7DayWeekdayLoop(tt.start)
		if len(got) != len(tt.want) {
			t.Fatalf("start %d: got %v", tt.start, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("start %d: got %v want %v", tt.start, got, tt.want)
			}
		}
	}
}

func TestScheduleOccurrences_TodayCutoff(t *testing.T) {
	h, habits := testHabitAndMap()
	// fires daily at 09:00, which has already passed at noon
	r := reminderFor(h, 9, 0, habit.AllDays)

	requests := ScheduleOccurrences([]habit.Reminder{r}, habits, wednesdayNoon, 50)

	// 6 occurrences: today's 09:00 is gone and today's weekday doesn't recur
	// within the 7-entry loop
	if len(requests) != 6 {
		t.Fatalf("got %d requests want 6", len(requests))
	}
	for _, req := range requests {
		if req.WeekdayOffset == 3 {
			t.Fatalf("today's passed occurrence was scheduled: %+v", req)
		}
	}
	// first emitted occurrence is tomorrow (Thursday)
	if requests[0].WeekdayOffset != 4 {
		t.Fatalf("first occurrence weekday=%d want 4", requests[0].WeekdayOffset)
	}
}

func TestScheduleOccurrences_TodayLaterTimeIncluded(t *testing.T) {
	h, habits := testHabitAndMap()
	r := reminderFor(h, 18, 30, habit.NewWeekdaySet(3))

	requests := ScheduleOccurrences([]habit.Reminder{r}, habits, wednesdayNoon, 50)
	if len(requests) != 1 {
		t.Fatalf("got %d requests want 1", len(requests))
	}
	req := requests[0]
	if req.WeekdayOffset != 3 || req.Hour != 18 || req.Minute != 30 {
		t.Fatalf("unexpected occurrence %+v", req)
	}
	if want := OccurrenceID(r.UUID, 3, 18*60+30); req.ID != want {
		t.Fatalf("got id %q want %q", req.ID, want)
	}
}

func TestScheduleOccurrences_ExactNowExcluded(t *testing.T) {
	h, habits := testHabitAndMap()
	// fires exactly at now: "time <= now" must exclude it
	r := reminderFor(h, 12, 0, habit.NewWeekdaySet(3))

	requests := ScheduleOccurrences([]habit.Reminder{r}, habits, wednesdayNoon, 50)
	if len(requests) != 0 {
		t.Fatalf("got %d requests want 0", len(requests))
	}
}

func TestScheduleOccurrences_GlobalCap(t *testing.T) {
	h, habits := testHabitAndMap()
	// 60 reminders, each on every weekday at a distinct time: 420 candidate
	// occurrences against a cap of 50
	reminders := make([]habit.Reminder, 0, 60)
	for i := 0; i < 60; i++ {
		reminders = append(reminders, reminderFor(h, 13+i/60, i%60, habit.AllDays))
	}

	requests := ScheduleOccurrences(reminders, habits, wednesdayNoon, 50)
	if len(requests) != 50 {
		t.Fatalf("got %d requests want 50", len(requests))
	}

	// the cap keeps the soonest slots: everything must land on today's
	// remaining times (weekday 3, times after 12:00)
	for _, req := range requests {
		if req.WeekdayOffset != 3 {
			t.Fatalf("occurrence beyond the earliest day: %+v", req)
		}
		if req.Hour*60+req.Minute <= 12*60 {
			t.Fatalf("occurrence at or before now: %+v", req)
		}
	}

	// times must come out ascending within the day
	for i := 1; i < len(requests); i++ {
		prev := requests[i-1].Hour*60 + requests[i-1].Minute
		cur := requests[i].Hour*60 + requests[i].Minute
		if cur < prev {
			t.Fatalf("occurrences not in ascending time order at %d", i)
		}
	}
}

func TestScheduleOccurrences_SharedSlot(t *testing.T) {
	h, habits := testHabitAndMap()
	r1 := reminderFor(h, 8, 0, habit.NewWeekdaySet(4))
	r2 := reminderFor(h, 8, 0, habit.NewWeekdaySet(4))

	requests := ScheduleOccurrences([]habit.Reminder{r1, r2}, habits, wednesdayNoon, 50)
	if len(requests) != 2 {
		t.Fatalf("got %d requests want 2", len(requests))
	}
	if requests[0].ID == requests[1].ID {
		t.Fatal("distinct reminders sharing a slot must have distinct ids")
	}
}

func TestScheduleOccurrences_MissingHabitSkipped(t *testing.T) {
	_, habits := testHabitAndMap()
	orphan := habit.Reminder{
		UUID:          uuid.New(),
		HabitUUID:     uuid.New(),
		Hour:          15,
		Minute:        0,
		FrequencyDays: habit.AllDays,
	}
	requests := ScheduleOccurrences([]habit.Reminder{orphan}, habits, wednesdayNoon, 50)
	if len(requests) != 0 {
		t.Fatalf("got %d requests want 0", len(requests))
	}
}

func TestNotificationBody_Pluralization(t *testing.T) {
	h := habit.Habit{Name: "floss", FrequencyPerWeek: 1}
	if got := notificationBody(&h); got != fmt.Sprintf(
		"Friendly reminder regarding your habit %q that you are aiming to perform 1 time / week.", "floss") {
		t.Fatalf("unexpected body %q", got)
	}
}
