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

func validateReminder(rem *habit.Reminder) error {
	t := rem.TimeOfDay()
	if !t.Valid() {
		return fmt.Errorf("invalid time of day %02d:%02d", rem.Hour, rem.Minute)
	}
	if rem.FrequencyDays.IsEmpty() {
		return fmt.Errorf("reminder must be active on at least one weekday")
	}
	return nil
}

func (s *Server) createReminder(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	var rem habit.Reminder
	if err := json.NewDecoder(r.Body).Decode(&rem); err != nil {
		logger.Warn("Invalid JSON in create reminder request", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	rem.HabitUUID = habitID
	if rem.UUID == uuid.Nil {
		rem.UUID = uuid.New()
	}
	if rem.CreatedAt == 0 {
		rem.CreatedAt = time.Now().Unix()
	}
	if err := validateReminder(&rem); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("Storing reminder", "reminder_uuid", rem.UUID, "habit_uuid", habitID,
		"time", rem.TimeOfDay().String())
	err = s.store.PutReminder(rem)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err != nil {
		logger.Error("Failed to store reminder", "reminder_uuid", rem.UUID, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}

	s.rescheduleReminders(r)

	if err := writeJSON(w, http.StatusCreated, rem); err != nil {
		logger.Error("Failed to serialize create reminder response", "reminder_uuid", rem.UUID, "error", err)
	}
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	reminders, err := s.store.ListReminders(habitID)
	if err != nil {
		logger.Error("Failed to list reminders", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if reminders == nil {
		reminders = []habit.Reminder{}
	}
	resp := ReminderListResponse{HabitID: habitID, Reminders: reminders}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize reminder list response", "habit_uuid", habitID, "error", err)
	}
}

func (s *Server) updateReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reminder_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	existing, err := s.store.GetReminder(id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}
	if err != nil {
		logger.Error("Failed to get reminder for update", "reminder_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	updated := *existing
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		logger.Warn("Invalid JSON in update reminder request", "reminder_uuid", id, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	updated.UUID = existing.UUID
	updated.HabitUUID = existing.HabitUUID
	updated.CreatedAt = existing.CreatedAt
	if err := validateReminder(&updated); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.PutReminder(updated); err != nil {
		logger.Error("Failed to update reminder", "reminder_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}

	s.rescheduleReminders(r)

	if err := writeJSON(w, http.StatusOK, updated); err != nil {
		logger.Error("Failed to serialize update reminder response", "reminder_uuid", id, "error", err)
	}
}

func (s *Server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reminder_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	err = s.store.DeleteReminder(id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}
	if err != nil {
		logger.Error("Failed to delete reminder", "reminder_uuid", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	logger.Info("Reminder deleted", "reminder_uuid", id)

	s.rescheduleReminders(r)
	w.WriteHeader(http.StatusNoContent)
}
