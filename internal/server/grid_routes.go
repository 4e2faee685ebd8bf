package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brk3/habitpanda/internal/grid"
	"github.com/brk3/habitpanda/internal/logger"
	"github.com/brk3/habitpanda/internal/storage"
	"github.com/brk3/habitpanda/internal/trend"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
)

// defaultGridDays is the window rendered when no range is given: the current
// fortnight ending today.
const defaultGridDays = 14

func (s *Server) getGrid(w http.ResponseWriter, r *http.Request) {
	today := habit.StripTime(time.Now())

	end := today
	if t, ok, err := parseDateParam(r, "end"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		end = habit.StripTime(t)
	}
	start := habit.AddDays(end, -(defaultGridDays - 1))
	if t, ok, err := parseDateParam(r, "start"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		start = habit.StripTime(t)
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end date precedes start date")
		return
	}

	habits, err := s.store.ListHabits()
	if err != nil {
		logger.Error("Failed to list habits for grid", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	// the aggregate needs the full history: first-check-in detection looks
	// at dates before the window and day states depend on it
	checkIns, err := s.store.ListCheckIns(nil, nil, &end)
	if err != nil {
		logger.Error("Failed to list check-ins for grid", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	agg := grid.Build(habits, checkIns, start, today)
	dayCount := habit.DaysBetween(start, end) + 1

	resp := GridResponse{
		Start:  start.Format(dateParamFormat),
		End:    end.Format(dateParamFormat),
		Habits: make([]GridRow, 0, len(habits)),
	}
	for i := range habits {
		h := &habits[i]
		days := agg.ForHabit(h.UUID)
		row := GridRow{HabitID: h.UUID, Name: h.Name, Days: make([]GridDay, 0, dayCount)}
		for offset := 0; offset < dayCount; offset++ {
			row.Days = append(row.Days, GridDay{
				Date:   habit.AddDays(start, offset).Format(dateParamFormat),
				State:  agg.Resolve(h, offset),
				Count:  days.Count(offset),
				Values: days.Values(offset),
			})
		}
		resp.Habits = append(resp.Habits, row)
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize grid response", "error", err)
	}
}

// defaultTrendDays is the series length rendered when no range is given.
const defaultTrendDays = 30

func (s *Server) getTrend(w http.ResponseWriter, r *http.Request) {
	habitID, err := habitIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit id")
		return
	}

	if _, err := s.store.GetHabit(habitID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "habit not found")
			return
		}
		logger.Error("Failed to get habit for trend", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	end := habit.StripTime(time.Now())
	if t, ok, err := parseDateParam(r, "end"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		end = habit.StripTime(t)
	}
	start := habit.AddDays(end, -(defaultTrendDays - 1))
	if t, ok, err := parseDateParam(r, "start"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if ok {
		start = habit.StripTime(t)
	}

	dayWindow := trend.DefaultDayWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		dayWindow, err = strconv.Atoi(raw)
		if err != nil || dayWindow < 1 {
			writeError(w, http.StatusBadRequest, "window must be a positive integer")
			return
		}
	}

	checkIns, err := s.store.ListCheckIns([]uuid.UUID{habitID}, nil, &end)
	if err != nil {
		logger.Error("Failed to list check-ins for trend", "habit_uuid", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	resp := TrendResponse{HabitID: habitID, DayWindow: dayWindow, Points: []trend.Point{}}
	if len(checkIns) > 0 {
		// the series starts no earlier than the first check-in: all-zero
		// lead-in days carry no signal
		first := habit.StripTime(checkIns[0].CheckInDate)
		if start.Before(first) {
			start = first
		}
		if !end.Before(start) {
			resp.Points = trend.RollingSums(checkIns, start, end, dayWindow)
		}
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize trend response", "habit_uuid", habitID, "error", err)
	}
}
