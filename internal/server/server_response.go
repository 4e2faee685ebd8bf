package server

import (
	"github.com/brk3/habitpanda/internal/trend"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

type CheckInListResponse struct {
	HabitID  uuid.UUID       `json:"habit_id"`
	CheckIns []habit.CheckIn `json:"check_ins"`
}

type ReminderListResponse struct {
	HabitID   uuid.UUID        `json:"habit_id"`
	Reminders []habit.Reminder `json:"reminders"`
}

type DeletedResponse struct {
	Deleted int `json:"deleted"`
}

// GridResponse is the day-state grid for every habit over a date window.
// Cells outside a habit's history render as not_started; dates past the
// window's today column are simply absent client-side, so every habit row
// covers the full [start, end] range.
type GridResponse struct {
	Start  string    `json:"start"`
	End    string    `json:"end"`
	Habits []GridRow `json:"habits"`
}

type GridRow struct {
	HabitID uuid.UUID `json:"habit_id"`
	Name    string    `json:"name"`
	Days    []GridDay `json:"days"`
}

type GridDay struct {
	Date   string               `json:"date"`
	State  habit.DayState       `json:"state"`
	Count  int                  `json:"count"`
	Values []habit.CheckInValue `json:"values,omitempty"`
}

type TrendResponse struct {
	HabitID   uuid.UUID     `json:"habit_id"`
	DayWindow int           `json:"day_window"`
	Points    []trend.Point `json:"points"`
}

// ExportHabit nests a habit's check-ins and reminders under the habit record,
// matching the wholesale export/import document shape.
type ExportHabit struct {
	habit.Habit
	CheckIns  []habit.CheckIn  `json:"check_ins"`
	Reminders []habit.Reminder `json:"reminders"`
}

type ExportDocument struct {
	Habits []ExportHabit `json:"habits"`
}
