package server

import (
	"encoding/json"
	"net/http"

	"github.com/brk3/habitpanda/internal/logger"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

func (s *Server) exportData(w http.ResponseWriter, _ *http.Request) {
	habits, err := s.store.ListHabits()
	if err != nil {
		logger.Error("Failed to list habits for export", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	doc := ExportDocument{Habits: make([]ExportHabit, 0, len(habits))}
	for _, h := range habits {
		checkIns, err := s.store.ListCheckIns([]uuid.UUID{h.UUID}, nil, nil)
		if err != nil {
			logger.Error("Failed to list check-ins for export", "habit_uuid", h.UUID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		reminders, err := s.store.ListReminders(h.UUID)
		if err != nil {
			logger.Error("Failed to list reminders for export", "habit_uuid", h.UUID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		if checkIns == nil {
			checkIns = []habit.CheckIn{}
		}
		if reminders == nil {
			reminders = []habit.Reminder{}
		}
		doc.Habits = append(doc.Habits, ExportHabit{Habit: h, CheckIns: checkIns, Reminders: reminders})
	}

	w.Header().Set("Content-Disposition", `attachment; filename="habitpanda-export.json"`)
	if err := writeJSON(w, http.StatusOK, doc); err != nil {
		logger.Error("Failed to serialize export", "error", err)
	}
}

// importData replaces all habit data with the uploaded export document, then
// rebuilds the notification schedule against the imported reminders.
func (s *Server) importData(w http.ResponseWriter, r *http.Request) {
	var doc ExportDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		logger.Warn("Invalid JSON in import request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var habits []habit.Habit
	var checkIns []habit.CheckIn
	var reminders []habit.Reminder
	for _, eh := range doc.Habits {
		if eh.UUID == uuid.Nil || eh.Name == "" {
			writeError(w, http.StatusBadRequest, "every habit needs a uuid and a name")
			return
		}
		habits = append(habits, eh.Habit)
		for _, c := range eh.CheckIns {
			c.HabitUUID = eh.UUID
			c.CheckInDate = habit.StripTime(c.CheckInDate)
			checkIns = append(checkIns, c)
		}
		for _, rem := range eh.Reminders {
			rem.HabitUUID = eh.UUID
			reminders = append(reminders, rem)
		}
	}

	if err := s.store.ReplaceAll(habits, checkIns, reminders); err != nil {
		logger.Error("Import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	logger.Info("Imported data", "habits", len(habits), "check_ins", len(checkIns),
		"reminders", len(reminders))
	activeHabits.Set(float64(len(habits)))

	s.rescheduleReminders(r)

	resp := map[string]int{
		"habits":    len(habits),
		"check_ins": len(checkIns),
		"reminders": len(reminders),
	}
	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		logger.Error("Failed to serialize import response", "error", err)
	}
}

func (s *Server) notificationReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reminders.Report(r.Context())
	if err != nil {
		logger.Error("Failed to build notification report", "error", err)
		writeError(w, http.StatusInternalServerError, "report failed")
		return
	}
	if err := writeJSON(w, http.StatusOK, report); err != nil {
		logger.Error("Failed to serialize notification report", "error", err)
	}
}

func (s *Server) rebuildNotifications(w http.ResponseWriter, r *http.Request) {
	scheduled, err := s.reminders.Rebuild(r.Context())
	if err != nil {
		logger.Error("Notification rebuild failed", "error", err)
		writeError(w, http.StatusInternalServerError, "rebuild failed")
		return
	}
	pendingNotifications.Set(float64(scheduled))
	if err := writeJSON(w, http.StatusOK, map[string]int{"scheduled": scheduled}); err != nil {
		logger.Error("Failed to serialize rebuild response", "error", err)
	}
}

func (s *Server) cleanupNotifications(w http.ResponseWriter, r *http.Request) {
	removed, err := s.reminders.RemoveOrphanedDelivered(r.Context())
	if err != nil {
		logger.Error("Notification cleanup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	if err := writeJSON(w, http.StatusOK, map[string]int{"removed": removed}); err != nil {
		logger.Error("Failed to serialize cleanup response", "error", err)
	}
}
