// Package seed generates a deterministic demo dataset: a handful of habits
// with 20 days of check-in history and a couple of reminders.
package seed

import (
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

type seedReminder struct {
	hour   int
	minute int
	// one column per weekday, Sunday first; non-space means active
	frequencyDays string
}

type seedHabit struct {
	name             string
	frequencyPerWeek int
	// one column per day, oldest first; the rightmost column is today.
	// "X" is one check-in, a digit is that many, space is none.
	checkInHistory string
	reminders      []seedReminder
}

var seedHabits = []seedHabit{
	{
		name:             "Call mom",
		frequencyPerWeek: 1,
		checkInHistory:   "    X      X      X ",
	},
	{
		name:             "Do some form of exercise",
		frequencyPerWeek: 5,
		checkInHistory:   " XXX X  X X X X 2 XX",
	},
	{
		name:             "Have a no-TV night",
		frequencyPerWeek: 2,
		checkInHistory:   " X  X      X      X ",
	},
	{
		name:             "Make the bed every morning",
		frequencyPerWeek: 7,
		checkInHistory:   "XXXXXXXXXXXXXXXXXXXX",
		reminders: []seedReminder{
			{hour: 8, minute: 30, frequencyDays: "X     X"},
			{hour: 7, minute: 30, frequencyDays: " XXXXX "},
		},
	},
	{
		name:             "Read for fun or growth 20 minutes",
		frequencyPerWeek: 5,
		checkInHistory:   " X X X X XXXX X XX X",
	},
	{
		name:             "Take daily vitamins",
		frequencyPerWeek: 7,
		checkInHistory:   "XX XXXXXXXXXX XXXXXX",
	},
}

// Data expands the seed table into records anchored at now: habits created 20
// days ago, check-in history ending today.
func Data(now time.Time) ([]habit.Habit, []habit.CheckIn, []habit.Reminder) {
	today := habit.StripTime(now)
	createdAt := habit.AddDays(today, -20)

	var habits []habit.Habit
	var checkIns []habit.CheckIn
	var reminders []habit.Reminder

	for i, sh := range seedHabits {
		h := habit.Habit{
			UUID:             uuid.New(),
			CreatedAt:        createdAt.Unix() + int64(i),
			Name:             sh.name,
			Order:            i,
			FrequencyPerWeek: sh.frequencyPerWeek,
			CheckInType:      habit.CheckInTypeBinary,
		}
		habits = append(habits, h)

		history := []rune(sh.checkInHistory)
		for col, state := range history {
			count := 0
			switch {
			case state == 'X':
				count = 1
			case state >= '1' && state <= '9':
				count = int(state - '0')
			}
			// rightmost column is today
			daysAgo := len(history) - 1 - col
			date := habit.AddDays(today, -daysAgo)
			for n := 0; n < count; n++ {
				checkIns = append(checkIns, habit.CheckIn{
					UUID:        uuid.New(),
					HabitUUID:   h.UUID,
					CreatedAt:   date.Unix(),
					CheckInDate: date,
					Value:       habit.CheckInValueSuccess,
				})
			}
		}

		for _, sr := range sh.reminders {
			var days []int
			for w, c := range sr.frequencyDays {
				if c != ' ' {
					days = append(days, w)
				}
			}
			reminders = append(reminders, habit.Reminder{
				UUID:          uuid.New(),
				HabitUUID:     h.UUID,
				CreatedAt:     now.Unix(),
				Hour:          sr.hour,
				Minute:        sr.minute,
				FrequencyDays: habit.NewWeekdaySet(days...),
			})
		}
	}

	return habits, checkIns, reminders
}
