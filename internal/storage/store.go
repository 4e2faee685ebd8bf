package storage

import (
	"errors"
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the synchronous record store backing the tracker. Reads feed the
// pure scheduling/aggregation components, which expect fully materialized
// slices; writes enforce the day-off mutual-exclusivity invariant (see
// AddCheckIn).
type Store interface {
	// Habits. ListHabits returns habits sorted by their manual order rank.
	// DeleteHabit cascades to the habit's check-ins and reminders and
	// re-packs the remaining habits' order to a contiguous 0..N-1.
	PutHabit(h habit.Habit) error
	GetHabit(id uuid.UUID) (*habit.Habit, error)
	ListHabits() ([]habit.Habit, error)
	DeleteHabit(id uuid.UUID) error

	// Check-ins. AddCheckIn removes any day-off check-in for the same
	// (habit, date) when a non-day-off check-in is added, and rejects a
	// day-off check-in for a date that already has a qualifying check-in.
	// ListCheckIns filters by habit id set (nil means all habits) and
	// optional date range and returns check-ins ascending by date.
	AddCheckIn(c habit.CheckIn) error
	ListCheckIns(habitIDs []uuid.UUID, from, to *time.Time) ([]habit.CheckIn, error)
	DeleteCheckIn(habitID, checkInID uuid.UUID) error
	// DeleteCheckInsThrough bulk-deletes the habit's check-ins dated on or
	// before the given day, returning how many were removed.
	DeleteCheckInsThrough(habitID uuid.UUID, through time.Time) (int, error)

	// Reminders.
	PutReminder(r habit.Reminder) error
	GetReminder(id uuid.UUID) (*habit.Reminder, error)
	ListReminders(habitID uuid.UUID) ([]habit.Reminder, error)
	ListAllReminders() ([]habit.Reminder, error)
	DeleteReminder(id uuid.UUID) error

	// ReplaceAll wipes every habit, check-in and reminder and installs the
	// given data wholesale. Used by import.
	ReplaceAll(habits []habit.Habit, checkIns []habit.CheckIn, reminders []habit.Reminder) error

	// Auth material.
	PutAPIKey(keyHash, userID string) error
	GetAPIKey(keyHash string) (userID string, found bool, err error)
	PutRefreshToken(userID string, tok *oauth2.Token) error
	GetRefreshToken(userID string) (*oauth2.Token, bool, error)
	DeleteRefreshToken(userID string) error

	Close() error
}
