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

const dateParamFormat = "2006-01-02"

func parseDateParam(r *http.Request, name string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dateParamFormat, raw, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s date: must be YYYY-MM-DD", name)
	}
	return t, true, nil
}

type addCheckInRequest struct {
	Date  string             `json:"date"`
	Value habit.CheckInValue `json:"value"`
}

func (s *Server) addCheckIn(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	var req addCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid JSON in add check-in request", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	h, err := s.store.GetHabit(habitID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err != nil {
		logger.Error("Failed to get habit for check-in", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	// the date defaults to today; past dates are fine (backdating), future
	// dates are not
	date := habit.StripTime(time.Now())
	if req.Date != "" {
		parsed, err := time.ParseInLocation(dateParamFormat, req.Date, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
			return
		}
		date = habit.StripTime(parsed)
	}
	if date.After(habit.StripTime(time.Now())) {
		writeError(w, http.StatusBadRequest, "check-in date cannot be in the future")
		return
	}

	// day-off is a universal override; every other value must fit the
	// habit's check-in type
	if !req.Value.IsDayOff() && !h.CheckInType.AllowsValue(req.Value) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("value %q is not legal for check-in type %q", req.Value, h.CheckInType))
		return
	}

	c := habit.CheckIn{
		UUID:        uuid.New(),
		HabitUUID:   habitID,
		CreatedAt:   time.Now().Unix(),
		CheckInDate: date,
		Value:       req.Value,
	}
	if err := s.store.AddCheckIn(c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "habit not found")
			return
		}
		logger.Warn("Check-in rejected", "habit_uuid", habitID, "date", req.Date, "error", err)
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	logger.Info("Check-in recorded", "habit_uuid", habitID, "check_in_uuid", c.UUID,
		"date", c.CheckInDate.Format(dateParamFormat), "value", c.Value,
		"backdated", c.WasAddedForPriorDate())
	checkInsRecorded.WithLabelValues(string(c.Value)).Inc()

	s.rescheduleReminders(r)

	if err := writeJSON(w, http.StatusCreated, c); err != nil {
		logger.Error("Failed to serialize check-in response", "habit_uuid", habitID, "error", err)
	}
}

func (s *Server) listCheckIns(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	var from, to *time.Time
	if t, ok, err := parseDateParam(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		from = &t
	}
	if t, ok, err := parseDateParam(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		to = &t
	}

	checkIns, err := s.store.ListCheckIns([]uuid.UUID{habitID}, from, to)
	if err != nil {
		logger.Error("Failed to list check-ins", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if checkIns == nil {
		checkIns = []habit.CheckIn{}
	}
	resp := CheckInListResponse{HabitID: habitID, CheckIns: checkIns}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize check-in list response", "habit_uuid", habitID, "error", err)
	}
}

func (s *Server) deleteCheckIn(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	checkInID, err := uuid.Parse(chi.URLParam(r, "checkin_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check-in id")
		return
	}

	err = s.store.DeleteCheckIn(habitID, checkInID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "check-in not found")
		return
	}
	if err != nil {
		logger.Error("Failed to delete check-in", "habit_uuid", habitID,
			"check_in_uuid", checkInID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.rescheduleReminders(r)
	w.WriteHeader(http.StatusNoContent)
}

// deleteCheckInsThrough bulk-deletes a habit's check-ins dated on or before
// the "through" query date.
func (s *Server) deleteCheckInsThrough(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}
	through, ok, err := parseDateParam(r, "through")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "through date is required")
		return
	}

	deleted, err := s.store.DeleteCheckInsThrough(habitID, through)
	if err != nil {
		logger.Error("Failed to bulk delete check-ins", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	logger.Info("Bulk deleted check-ins", "habit_uuid", habitID,
		"through", through.Format(dateParamFormat), "deleted", deleted)

	s.rescheduleReminders(r)
	if err := writeJSON(w, http.StatusOK, DeletedResponse{Deleted: deleted}); err != nil {
		logger.Error("Failed to serialize bulk delete response", "habit_uuid", habitID, "error", err)
	}
}
