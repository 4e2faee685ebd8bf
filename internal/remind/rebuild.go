package remind

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitpanda/internal/logger"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

// Querier is the slice of the store the reminder service needs.
type Querier interface {
	ListHabits() ([]habit.Habit, error)
	ListAllReminders() ([]habit.Reminder, error)
	GetReminder(id uuid.UUID) (*habit.Reminder, error)
}

// Service owns the notification schedule: it rebuilds the backend's pending
// set from the current reminder definitions and purges orphaned delivered
// notifications. All collaborators are injected; Now defaults to time.Now.
type Service struct {
	store          Querier
	backend        Backend
	now            func() time.Time
	maxOccurrences int
}

func NewService(store Querier, backend Backend) *Service {
	return &Service{
		store:          store,
		backend:        backend,
		now:            time.Now,
		maxOccurrences: habit.MaxReminderNotificationCount,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMaxOccurrences overrides the global occurrence cap.
func (s *Service) WithMaxOccurrences(n int) *Service {
	s.maxOccurrences = n
	return s
}

// Rebuild wipes the backend's pending set and re-registers the occurrences
// for the next 7 days. The clear must finish before any submission starts,
// otherwise stale occurrences could survive; a failed clear therefore aborts
// the rebuild. Individual submission failures are logged and skipped, and the
// rest of the walk still completes. Returns how many occurrences were
// scheduled.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	reminders, err := s.store.ListAllReminders()
	if err != nil {
		return 0, fmt.Errorf("list reminders: %w", err)
	}
	habitsByID, err := s.habitsByID()
	if err != nil {
		return 0, err
	}

	if err := s.backend.ClearAllPending(ctx); err != nil {
		return 0, fmt.Errorf("clear pending notifications: %w", err)
	}

	requests := ScheduleOccurrences(reminders, habitsByID, s.now(), s.maxOccurrences)
	scheduled := 0
	for _, req := range requests {
		if err := s.backend.Submit(ctx, req); err != nil {
			logger.Error("Failed to schedule notification occurrence",
				"occurrence_id", req.ID, "habit_uuid", req.HabitUUID, "error", err)
			continue
		}
		scheduled++
	}
	logger.Info("Rebuilt notification schedule",
		"reminders", len(reminders), "scheduled", scheduled)
	return scheduled, nil
}

// RemoveOrphanedDelivered purges delivered notifications whose reminder no
// longer exists. Returns how many were removed.
func (s *Service) RemoveOrphanedDelivered(ctx context.Context) (int, error) {
	delivered, err := s.backend.ListDelivered(ctx)
	if err != nil {
		return 0, fmt.Errorf("list delivered notifications: %w", err)
	}

	var orphaned []string
	for _, d := range delivered {
		if _, err := s.store.GetReminder(d.ReminderUUID); err != nil {
			orphaned = append(orphaned, d.ID)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}
	if err := s.backend.RemoveDelivered(ctx, orphaned); err != nil {
		return 0, fmt.Errorf("remove delivered notifications: %w", err)
	}
	logger.Info("Removed orphaned delivered notifications", "count", len(orphaned))
	return len(orphaned), nil
}

// Report summarizes the backend state and the projected size of the next
// rebuild.
type Report struct {
	CurrentWeekday       int   `json:"current_weekday"`
	WeekdayLoop          []int `json:"weekday_loop"`
	PendingCount         int   `json:"pending_count"`
	DeliveredCount       int   `json:"delivered_count"`
	ProjectedOccurrences int   `json:"projected_occurrences"`
	HabitsWithReminders  int   `json:"habits_with_reminders"`
}

func (s *Service) Report(ctx context.Context) (*Report, error) {
	pending, err := s.backend.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	delivered, err := s.backend.ListDelivered(ctx)
	if err != nil {
		return nil, fmt.Errorf("list delivered notifications: %w", err)
	}
	reminders, err := s.store.ListAllReminders()
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	habitsByID, err := s.habitsByID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	projected := ScheduleOccurrences(reminders, habitsByID, now, s.maxOccurrences)
	habitSet := make(map[uuid.UUID]struct{})
	for _, req := range projected {
		habitSet[req.HabitUUID] = struct{}{}
	}

	currentWeekday := habit.WeekdayOf(now)
	return &Report{
		CurrentWeekday:       currentWeekday,
		WeekdayLoop:          Next7DayWeekdayLoop(currentWeekday),
		PendingCount:         len(pending),
		DeliveredCount:       len(delivered),
		ProjectedOccurrences: len(projected),
		HabitsWithReminders:  len(habitSet),
	}, nil
}

func (s *Service) habitsByID() (map[uuid.UUID]habit.Habit, error) {
	habits, err := s.store.ListHabits()
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	byID := make(map[uuid.UUID]habit.Habit, len(habits))
	for _, h := range habits {
		byID[h.UUID] = h
	}
	return byID, nil
}
