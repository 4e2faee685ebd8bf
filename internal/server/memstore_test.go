package server

import (
	"fmt"
	"sort"
	"time"

	"github.com/brk3/habitpanda/internal/storage"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// memStore is an in-memory storage.Store for handler tests. It mirrors the
// bolt store's semantics: sorted listings, cascade on habit delete, order
// re-pack, and the day-off write rule.
type memStore struct {
	habits    map[uuid.UUID]habit.Habit
	checkIns  map[uuid.UUID]habit.CheckIn
	reminders map[uuid.UUID]habit.Reminder
	apiKeys   map[string]string
	tokens    map[string]*oauth2.Token
}

func newMemStore() *memStore {
	return &memStore{
		habits:    map[uuid.UUID]habit.Habit{},
		checkIns:  map[uuid.UUID]habit.CheckIn{},
		reminders: map[uuid.UUID]habit.Reminder{},
		apiKeys:   map[string]string{},
		tokens:    map[string]*oauth2.Token{},
	}
}

func (m *memStore) PutHabit(h habit.Habit) error {
	m.habits[h.UUID] = h
	return nil
}

func (m *memStore) GetHabit(id uuid.UUID) (*habit.Habit, error) {
	h, ok := m.habits[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &h, nil
}

func (m *memStore) ListHabits() ([]habit.Habit, error) {
	out := make([]habit.Habit, 0, len(m.habits))
	for _, h := range m.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out, nil
}

func (m *memStore) DeleteHabit(id uuid.UUID) error {
	if _, ok := m.habits[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.habits, id)
	for cid, c := range m.checkIns {
		if c.HabitUUID == id {
			delete(m.checkIns, cid)
		}
	}
	for rid, r := range m.reminders {
		if r.HabitUUID == id {
			delete(m.reminders, rid)
		}
	}
	remaining, _ := m.ListHabits()
	for i, h := range remaining {
		h.Order = i
		m.habits[h.UUID] = h
	}
	return nil
}

func (m *memStore) AddCheckIn(c habit.CheckIn) error {
	if _, ok := m.habits[c.HabitUUID]; !ok {
		return storage.ErrNotFound
	}
	for cid, existing := range m.checkIns {
		if existing.HabitUUID != c.HabitUUID || !existing.CheckInDate.Equal(c.CheckInDate) {
			continue
		}
		if c.IsDayOff() && !existing.IsDayOff() {
			return fmt.Errorf("date already has a qualifying check-in")
		}
		if !c.IsDayOff() && existing.IsDayOff() {
			delete(m.checkIns, cid)
		}
	}
	m.checkIns[c.UUID] = c
	return nil
}

func (m *memStore) ListCheckIns(habitIDs []uuid.UUID, from, to *time.Time) ([]habit.CheckIn, error) {
	var want map[uuid.UUID]bool
	if habitIDs != nil {
		want = map[uuid.UUID]bool{}
		for _, id := range habitIDs {
			want[id] = true
		}
	}
	var out []habit.CheckIn
	for _, c := range m.checkIns {
		if want != nil && !want[c.HabitUUID] {
			continue
		}
		if from != nil && c.CheckInDate.Before(habit.StripTime(*from)) {
			continue
		}
		if to != nil && c.CheckInDate.After(habit.StripTime(*to)) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckInDate.Before(out[j].CheckInDate)
	})
	return out, nil
}

func (m *memStore) DeleteCheckIn(habitID, checkInID uuid.UUID) error {
	c, ok := m.checkIns[checkInID]
	if !ok || c.HabitUUID != habitID {
		return storage.ErrNotFound
	}
	delete(m.checkIns, checkInID)
	return nil
}

func (m *memStore) DeleteCheckInsThrough(habitID uuid.UUID, through time.Time) (int, error) {
	cutoff := habit.StripTime(through)
	deleted := 0
	for cid, c := range m.checkIns {
		if c.HabitUUID == habitID && !c.CheckInDate.After(cutoff) {
			delete(m.checkIns, cid)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memStore) PutReminder(r habit.Reminder) error {
	if _, ok := m.habits[r.HabitUUID]; !ok {
		return storage.ErrNotFound
	}
	m.reminders[r.UUID] = r
	return nil
}

func (m *memStore) GetReminder(id uuid.UUID) (*habit.Reminder, error) {
	r, ok := m.reminders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListReminders(habitID uuid.UUID) ([]habit.Reminder, error) {
	all, _ := m.ListAllReminders()
	out := all[:0]
	for _, r := range all {
		if r.HabitUUID == habitID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListAllReminders() ([]habit.Reminder, error) {
	out := make([]habit.Reminder, 0, len(m.reminders))
	for _, r := range m.reminders {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeInMinutes() != out[j].TimeInMinutes() {
			return out[i].TimeInMinutes() < out[j].TimeInMinutes()
		}
		return out[i].UUID.String() < out[j].UUID.String()
	})
	return out, nil
}

func (m *memStore) DeleteReminder(id uuid.UUID) error {
	if _, ok := m.reminders[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.reminders, id)
	return nil
}

func (m *memStore) ReplaceAll(habits []habit.Habit, checkIns []habit.CheckIn, reminders []habit.Reminder) error {
	m.habits = map[uuid.UUID]habit.Habit{}
	m.checkIns = map[uuid.UUID]habit.CheckIn{}
	m.reminders = map[uuid.UUID]habit.Reminder{}
	for _, h := range habits {
		m.habits[h.UUID] = h
	}
	for _, c := range checkIns {
		m.checkIns[c.UUID] = c
	}
	for _, r := range reminders {
		m.reminders[r.UUID] = r
	}
	sorted, _ := m.ListHabits()
	for i, h := range sorted {
		h.Order = i
		m.habits[h.UUID] = h
	}
	return nil
}

func (m *memStore) PutAPIKey(keyHash, userID string) error {
	m.apiKeys[keyHash] = userID
	return nil
}

func (m *memStore) GetAPIKey(keyHash string) (string, bool, error) {
	userID, ok := m.apiKeys[keyHash]
	return userID, ok, nil
}

func (m *memStore) PutRefreshToken(userID string, tok *oauth2.Token) error {
	m.tokens[userID] = tok
	return nil
}

func (m *memStore) GetRefreshToken(userID string) (*oauth2.Token, bool, error) {
	tok, ok := m.tokens[userID]
	return tok, ok, nil
}

func (m *memStore) DeleteRefreshToken(userID string) error {
	delete(m.tokens, userID)
	return nil
}

func (m *memStore) Close() error { return nil }

var _ storage.Store = (*memStore)(nil)
