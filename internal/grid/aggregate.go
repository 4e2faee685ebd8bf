package grid

import (
	"sort"
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

// Aggregate pre-materializes, for a batch of habits, the per-date lookup
// tables the day-state resolver and grid rendering need. Building it once per
// render cycle means answering a single grid cell is O(1) instead of a scan
// over the habit's full check-in history.
//
// Offsets are calendar-day offsets relative to windowStart and may be
// negative for check-ins that predate the window but still matter for
// first-check-in and cooldown math.
type Aggregate struct {
	windowStart time.Time
	byHabit     map[uuid.UUID]*HabitDays
}

// HabitDays holds one habit's aggregated check-in lookup tables.
type HabitDays struct {
	values map[int][]habit.CheckInValue
	counts map[int]int
	dayOff map[int]bool

	firstOffset int
	hasFirst    bool

	lastQualifyingOffset int
	hasLastQualifying    bool
}

var emptyHabitDays = &HabitDays{}

// Build aggregates check-ins for the given habits relative to windowStart.
// It is a pure function of its inputs: identical check-in sets always produce
// identical tables. The clock is passed in as today (stripped internally) so
// the "last qualifying check-in at or before today" cutoff is testable.
func Build(habits []habit.Habit, checkIns []habit.CheckIn, windowStart, today time.Time) *Aggregate {
	windowStart = habit.StripTime(windowStart)
	todayOffset := habit.DaysBetween(windowStart, today)

	a := &Aggregate{
		windowStart: windowStart,
		byHabit:     make(map[uuid.UUID]*HabitDays, len(habits)),
	}
	for i := range habits {
		a.byHabit[habits[i].UUID] = &HabitDays{
			values: map[int][]habit.CheckInValue{},
			counts: map[int]int{},
			dayOff: map[int]bool{},
		}
	}

	for i := range checkIns {
		c := &checkIns[i]
		hd, ok := a.byHabit[c.HabitUUID]
		if !ok {
			continue
		}
		offset := habit.DaysBetween(windowStart, c.CheckInDate)
		hd.values[offset] = append(hd.values[offset], c.Value)
		if c.IsDayOff() {
			hd.dayOff[offset] = true
		} else {
			hd.counts[offset]++
		}
		if !hd.hasFirst || offset < hd.firstOffset {
			hd.firstOffset = offset
			hd.hasFirst = true
		}
	}

	// Find each habit's most recent qualifying check-in by walking the
	// check-ins in descending date order: the first non-day-off hit at or
	// before today wins, and habits already resolved are skipped.
	desc := make([]*habit.CheckIn, len(checkIns))
	for i := range checkIns {
		desc[i] = &checkIns[i]
	}
	sort.SliceStable(desc, func(i, j int) bool {
		return desc[i].CheckInDate.After(desc[j].CheckInDate)
	})
	for _, c := range desc {
		hd, ok := a.byHabit[c.HabitUUID]
		if !ok || hd.hasLastQualifying || c.IsDayOff() {
			continue
		}
		offset := habit.DaysBetween(windowStart, c.CheckInDate)
		if offset > todayOffset {
			continue
		}
		hd.lastQualifyingOffset = offset
		hd.hasLastQualifying = true
	}

	return a
}

// WindowStart is the reference date all offsets are relative to.
func (a *Aggregate) WindowStart() time.Time {
	return a.windowStart
}

// ForHabit returns the habit's tables, or an empty set if the habit was not
// part of the build. The empty set resolves every date as not started.
func (a *Aggregate) ForHabit(id uuid.UUID) *HabitDays {
	if hd, ok := a.byHabit[id]; ok {
		return hd
	}
	return emptyHabitDays
}

// Count is the number of qualifying (non-day-off) check-ins on the date at
// the given offset.
func (h *HabitDays) Count(offset int) int {
	return h.counts[offset]
}

// Values returns every check-in value recorded for the date, day-off
// included.
func (h *HabitDays) Values(offset int) []habit.CheckInValue {
	return h.values[offset]
}

// HasDayOff reports whether an explicit day-off check-in exists on the date.
func (h *HabitDays) HasDayOff(offset int) bool {
	return h.dayOff[offset]
}

// FirstCheckInOffset is the minimum day offset across all of the habit's
// check-ins ever. ok is false for a habit with no check-ins.
func (h *HabitDays) FirstCheckInOffset() (offset int, ok bool) {
	return h.firstOffset, h.hasFirst
}

// LastQualifyingCheckInOffset is the maximum day offset of a non-day-off
// check-in at or before today. ok is false if no such check-in exists.
func (h *HabitDays) LastQualifyingCheckInOffset() (offset int, ok bool) {
	return h.lastQualifyingOffset, h.hasLastQualifying
}
