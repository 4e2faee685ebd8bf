package grid

import (
	"testing"
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

// 2024-03-17 is a Sunday, so offsets map 1:1 to weekday offsets in the first
// week of the window.
var windowStart = time.Date(2024, 3, 17, 0, 0, 0, 0, time.Local)

func testHabit(opts ...func(*habit.Habit)) habit.Habit {
	h := habit.Habit{
		UUID:             uuid.New(),
		CreatedAt:        windowStart.Unix(),
		Name:             "practice guitar",
		FrequencyPerWeek: 5,
		CheckInType:      habit.CheckInTypeBinary,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func checkInAt(h habit.Habit, offset int, value habit.CheckInValue) habit.CheckIn {
	date := habit.AddDays(windowStart, offset)
	return habit.CheckIn{
		UUID:        uuid.New(),
		HabitUUID:   h.UUID,
		CreatedAt:   date.Add(12 * time.Hour).Unix(),
		CheckInDate: date,
		Value:       value,
	}
}

func TestBuild_CountsAndOffsets(t *testing.T) {
	h := testHabit()
	today := habit.AddDays(windowStart, 10)
	checkIns := []habit.CheckIn{
		checkInAt(h, -2, habit.CheckInValueSuccess),
		checkInAt(h, 3, habit.CheckInValueSuccess),
		checkInAt(h, 3, habit.CheckInValueSuccess),
		checkInAt(h, 7, habit.CheckInValueSuccess),
	}

	agg := Build([]habit.Habit{h}, checkIns, windowStart, today)
	days := agg.ForHabit(h.UUID)

	if got := days.Count(3); got != 2 {
		t.Fatalf("count at 3: got %d want 2", got)
	}
	if got := days.Count(-2); got != 1 {
		t.Fatalf("count at -2: got %d want 1", got)
	}
	if got := days.Count(5); got != 0 {
		t.Fatalf("count at 5: got %d want 0", got)
	}

	first, ok := days.FirstCheckInOffset()
	if !ok || first != -2 {
		t.Fatalf("first offset: got %d,%v want -2,true", first, ok)
	}
	last, ok := days.LastQualifyingCheckInOffset()
	if !ok || last != 7 {
		t.Fatalf("last qualifying offset: got %d,%v want 7,true", last, ok)
	}
}

func TestBuild_LastQualifyingSkipsDayOffAndFuture(t *testing.T) {
	h := testHabit(func(h *habit.Habit) { h.CheckInType = habit.CheckInTypeLetterGrade })
	today := habit.AddDays(windowStart, 6)
	checkIns := []habit.CheckIn{
		checkInAt(h, 2, habit.CheckInValueGradeA),
		checkInAt(h, 5, habit.CheckInValueDayOff),
		// beyond today, must not win
		checkInAt(h, 9, habit.CheckInValueGradeB),
	}

	days := Build([]habit.Habit{h}, checkIns, windowStart, today).ForHabit(h.UUID)

	last, ok := days.LastQualifyingCheckInOffset()
	if !ok || last != 2 {
		t.Fatalf("last qualifying offset: got %d,%v want 2,true", last, ok)
	}
	if !days.HasDayOff(5) {
		t.Fatal("expected day off at offset 5")
	}
}

func TestBuild_NoCheckIns(t *testing.T) {
	h := testHabit()
	days := Build([]habit.Habit{h}, nil, windowStart, windowStart).ForHabit(h.UUID)

	if _, ok := days.FirstCheckInOffset(); ok {
		t.Fatal("expected no first check-in offset")
	}
	if _, ok := days.LastQualifyingCheckInOffset(); ok {
		t.Fatal("expected no last qualifying offset")
	}
}

func TestBuild_UnknownHabitIsEmpty(t *testing.T) {
	agg := Build(nil, nil, windowStart, windowStart)
	days := agg.ForHabit(uuid.New())
	if days.Count(0) != 0 || days.HasDayOff(0) {
		t.Fatal("unknown habit should have empty tables")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	h := testHabit()
	today := habit.AddDays(windowStart, 5)
	checkIns := []habit.CheckIn{
		checkInAt(h, 1, habit.CheckInValueSuccess),
		checkInAt(h, 4, habit.CheckInValueSuccess),
		checkInAt(h, 1, habit.CheckInValueSuccess),
	}
	// reversed input order must produce identical tables
	reversed := []habit.CheckIn{checkIns[2], checkIns[1], checkIns[0]}

	a := Build([]habit.Habit{h}, checkIns, windowStart, today).ForHabit(h.UUID)
	b := Build([]habit.Habit{h}, reversed, windowStart, today).ForHabit(h.UUID)

	for offset := -1; offset <= 5; offset++ {
		if a.Count(offset) != b.Count(offset) {
			t.Fatalf("offset %d: counts differ (%d vs %d)", offset, a.Count(offset), b.Count(offset))
		}
	}
	af, _ := a.FirstCheckInOffset()
	bf, _ := b.FirstCheckInOffset()
	al, _ := a.LastQualifyingCheckInOffset()
	bl, _ := b.LastQualifyingCheckInOffset()
	if af != bf || al != bl {
		t.Fatalf("offsets differ: first %d/%d last %d/%d", af, bf, al, bl)
	}
}
