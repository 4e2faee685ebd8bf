package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brk3/habitpanda/internal/logger"
	"github.com/brk3/habitpanda/internal/storage"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxHabitNameLength = 60

func habitIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "habit_id"))
}

func validateHabit(h *habit.Habit) error {
	if len(h.Name) == 0 || len(h.Name) > maxHabitNameLength {
		return fmt.Errorf("bad habit name: must be 1-%d characters", maxHabitNameLength)
	}
	if h.FrequencyPerWeek < 1 || h.FrequencyPerWeek > 7 {
		return fmt.Errorf("frequency per week must be 1-7")
	}
	if h.CheckInCooldownDays < 0 {
		return fmt.Errorf("check-in cooldown days must be >= 0")
	}
	if !h.CheckInType.Valid() {
		return fmt.Errorf("unknown check-in type %q", h.CheckInType)
	}
	return nil
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var h habit.Habit
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		logger.Warn("Invalid JSON in create habit request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if h.UUID == uuid.Nil {
		h.UUID = uuid.New()
	}
	if h.CreatedAt == 0 {
		h.CreatedAt = time.Now().Unix()
	}
	if h.FrequencyPerWeek == 0 {
		h.FrequencyPerWeek = habit.DefaultFrequencyPerWeek
	}
	if h.CheckInType == "" {
		h.CheckInType = habit.CheckInTypeBinary
	}
	if err := validateHabit(&h); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// new habits append to the bottom of the list
	existing, err := s.store.ListHabits()
	if err != nil {
		logger.Error("Failed to list habits for order assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	h.Order = len(existing)

	logger.Info("Storing habit", "habit_uuid", h.UUID, "habit_name", h.Name)
	if err := s.store.PutHabit(h); err != nil {
		logger.Error("Failed to store habit", "habit_uuid", h.UUID, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	activeHabits.Set(float64(len(existing) + 1))

	if err := writeJSON(w, http.StatusCreated, h); err != nil {
		logger.Error("Failed to serialize create habit response", "habit_uuid", h.UUID, "error", err)
	}
}

func (s *Server) listHabits(w http.ResponseWriter, _ *http.Request) {
	habits, err := s.store.ListHabits()
	if err != nil {
		logger.Error("Failed to list habits", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if habits == nil {
		habits = []habit.Habit{}
	}
	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize habit list response", "error", err)
	}
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	id, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	h, err := s.store.GetHabit(id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err != nil {
		logger.Error("Failed to get habit", "habit_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize get habit response", "habit_uuid", id, "error", err)
	}
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	id, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	existing, err := s.store.GetHabit(id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err != nil {
		logger.Error("Failed to get habit for update", "habit_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	// decode over the stored record so omitted fields keep their values
	updated := *existing
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		logger.Warn("Invalid JSON in update habit request", "habit_uuid", id, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	updated.UUID = existing.UUID
	updated.CreatedAt = existing.CreatedAt
	if err := validateHabit(&updated); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("Updating habit", "habit_uuid", id, "habit_name", updated.Name)
	if err := s.store.PutHabit(updated); err != nil {
		logger.Error("Failed to update habit", "habit_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}

	// inactive days or cooldown changes alter the reminder surface
	s.rescheduleReminders(r)

	if err := writeJSON(w, http.StatusOK, updated); err != nil {
		logger.Error("Failed to serialize update habit response", "habit_uuid", id, "error", err)
	}
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	logger.Info("Deleting habit", "habit_uuid", id)
	err = s.store.DeleteHabit(id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err != nil {
		logger.Error("Failed to delete habit", "habit_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	if habits, err := s.store.ListHabits(); err == nil {
		activeHabits.Set(float64(len(habits)))
	}
	s.rescheduleReminders(r)

	w.WriteHeader(http.StatusNoContent)
}
