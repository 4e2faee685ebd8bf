package remind

import (
	"fmt"
	"sort"
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

// ScheduleRequest is one concrete future firing of a reminder, bound to a
// weekday and time within the current 7-day horizon.
type ScheduleRequest struct {
	// ID is derived from (reminder, weekday, time-of-day) so re-registering
	// the same logical occurrence replaces it in the backend instead of
	// duplicating it.
	ID            string    `json:"id"`
	ReminderUUID  uuid.UUID `json:"reminder_uuid"`
	HabitUUID     uuid.UUID `json:"habit_uuid"`
	WeekdayOffset int       `json:"weekday_offset"`
	Hour          int       `json:"hour"`
	Minute        int       `json:"minute"`
	Body          string    `json:"body"`
}

// OccurrenceID builds the deterministic identifier for a reminder occurrence.
func OccurrenceID(reminderUUID uuid.UUID, weekdayOffset, timeInMinutes int) string {
	return fmt.Sprintf("%s.%d.%d", reminderUUID, weekdayOffset, timeInMinutes)
}

// Next7DayWeekdayLoop returns the weekday offsets of the scheduling horizon
// starting at the given weekday and wrapping: [start..6, 0..start-1].
func Next7DayWeekdayLoop(startWeekday int) []int {
	loop := make([]int, 0, habit.NumWeekdays)
	for w := startWeekday; w < habit.NumWeekdays; w++ {
		loop = append(loop, w)
	}
	for w := 0; w < startWeekday; w++ {
		loop = append(loop, w)
	}
	return loop
}

// remindersForWeek groups reminders by weekday, then by time-of-day minutes,
// since several reminders can share a slot.
type remindersForWeek map[int]map[int][]*habit.Reminder

func groupRemindersForWeek(reminders []habit.Reminder) remindersForWeek {
	byDay := make(remindersForWeek, habit.NumWeekdays)
	for w := 0; w < habit.NumWeekdays; w++ {
		byDay[w] = map[int][]*habit.Reminder{}
	}
	for i := range reminders {
		r := &reminders[i]
		for _, w := range r.FrequencyDays.Offsets() {
			byDay[w][r.TimeInMinutes()] = append(byDay[w][r.TimeInMinutes()], r)
		}
	}
	return byDay
}

func sortedTimes(slots map[int][]*habit.Reminder) []int {
	times := make([]int, 0, len(slots))
	for t := range slots {
		times = append(times, t)
	}
	sort.Ints(times)
	return times
}

// ScheduleOccurrences expands weekly recurring reminders into one-shot
// occurrences over the next 7 days. Days are walked starting from now's own
// weekday; on that first day, times at or before now are skipped (they
// reappear only after the next rebuild). The walk aborts entirely once
// maxOccurrences requests have been emitted, so the cap keeps the soonest
// occurrences and drops the furthest.
//
// habitsByID supplies the owning habits for notification bodies; reminders
// whose habit is missing are skipped.
func ScheduleOccurrences(
	reminders []habit.Reminder,
	habitsByID map[uuid.UUID]habit.Habit,
	now time.Time,
	maxOccurrences int,
) []ScheduleRequest {
	if maxOccurrences <= 0 {
		maxOccurrences = habit.MaxReminderNotificationCount
	}

	byDay := groupRemindersForWeek(reminders)
	currentWeekday := habit.WeekdayOf(now)
	nowMinutes := habit.TimeOfDayFromTime(now).TimeInMinutes()

	var requests []ScheduleRequest
outer:
	for i, weekday := range Next7DayWeekdayLoop(currentWeekday) {
		slots := byDay[weekday]
		for _, timeInMinutes := range sortedTimes(slots) {
			if i == 0 && timeInMinutes <= nowMinutes {
				continue
			}
			for _, r := range slots[timeInMinutes] {
				h, ok := habitsByID[r.HabitUUID]
				if !ok {
					continue
				}
				requests = append(requests, ScheduleRequest{
					ID:            OccurrenceID(r.UUID, weekday, timeInMinutes),
					ReminderUUID:  r.UUID,
					HabitUUID:     r.HabitUUID,
					WeekdayOffset: weekday,
					Hour:          r.Hour,
					Minute:        r.Minute,
					Body:          notificationBody(&h),
				})
				if len(requests) >= maxOccurrences {
					break outer
				}
			}
		}
	}
	return requests
}

func notificationBody(h *habit.Habit) string {
	plural := "s"
	if h.FrequencyPerWeek == 1 {
		plural = ""
	}
	return fmt.Sprintf(
		"Friendly reminder regarding your habit %q that you are aiming to perform %d time%s / week.",
		h.Name, h.FrequencyPerWeek, plural,
	)
}
