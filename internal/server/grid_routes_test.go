package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
)

func getGrid(t *testing.T, h http.Handler, query string) GridResponse {
	t.Helper()
	rr := mockRequest(h, http.MethodGet, "/grid"+query, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("grid: got %d want 200: %s", rr.Code, rr.Body.String())
	}
	var resp GridResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal grid: %v", err)
	}
	return resp
}

func stateOn(t *testing.T, row GridRow, date string) string {
	t.Helper()
	for _, d := range row.Days {
		if d.Date == date {
			return d.State.String()
		}
	}
	t.Fatalf("date %s not in grid row", date)
	return ""
}

func TestGrid_DayStates(t *testing.T) {
	h := newTestServer(newMemStore())
	created := createTestHabit(t, h, habit.Habit{Name: "guitar"})

	today := habit.StripTime(time.Now())
	firstDate := habit.AddDays(today, -4)
	dayOffDate := habit.AddDays(today, -2)
	addTestCheckIn(t, h, created.UUID, firstDate.Format("2006-01-02"), habit.CheckInValueSuccess)
	addTestCheckIn(t, h, created.UUID, dayOffDate.Format("2006-01-02"), habit.CheckInValueDayOff)

	start := habit.AddDays(today, -6)
	resp := getGrid(t, h, fmt.Sprintf("?start=%s&end=%s",
		start.Format("2006-01-02"), today.Format("2006-01-02")))

	if len(resp.Habits) != 1 {
		t.Fatalf("rows=%d want 1", len(resp.Habits))
	}
	row := resp.Habits[0]
	if len(row.Days) != 7 {
		t.Fatalf("days=%d want 7", len(row.Days))
	}

	if got := stateOn(t, row, habit.AddDays(today, -5).Format("2006-01-02")); got != "not_started" {
		t.Errorf("pre-history day = %s want not_started", got)
	}
	if got := stateOn(t, row, firstDate.Format("2006-01-02")); got != "active" {
		t.Errorf("check-in day = %s want active", got)
	}
	if got := stateOn(t, row, dayOffDate.Format("2006-01-02")); got != "day_off" {
		t.Errorf("day-off day = %s want day_off", got)
	}

	for _, d := range row.Days {
		if d.Date == firstDate.Format("2006-01-02") && d.Count != 1 {
			t.Errorf("check-in day count = %d want 1", d.Count)
		}
	}
}

func TestGrid_CooldownAndInactive(t *testing.T) {
	h := newTestServer(newMemStore())
	today := habit.StripTime(time.Now())

	cooled := createTestHabit(t, h, habit.Habit{Name: "cooled", CheckInCooldownDays: 2})
	addTestCheckIn(t, h, cooled.UUID, habit.AddDays(today, -1).Format("2006-01-02"), habit.CheckInValueSuccess)

	// inactive on today's own weekday so the assertion is date independent
	inactive := createTestHabit(t, h, habit.Habit{
		Name:               "inactive",
		InactiveDaysOfWeek: habit.NewWeekdaySet(habit.WeekdayOf(today)),
	})
	addTestCheckIn(t, h, inactive.UUID, habit.AddDays(today, -3).Format("2006-01-02"), habit.CheckInValueSuccess)

	resp := getGrid(t, h, "")
	byName := map[string]GridRow{}
	for _, row := range resp.Habits {
		byName[row.Name] = row
	}

	todayStr := today.Format("2006-01-02")
	if got := stateOn(t, byName["cooled"], todayStr); got != "cooldown" {
		t.Errorf("day after check-in = %s want cooldown", got)
	}
	if got := stateOn(t, byName["inactive"], todayStr); got != "scheduled_inactive" {
		t.Errorf("inactive weekday = %s want scheduled_inactive", got)
	}
}

func TestGrid_InvalidRange(t *testing.T) {
	h := newTestServer(newMemStore())
	rr := mockRequest(h, http.MethodGet, "/grid?start=2024-03-10&end=2024-03-01", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d want 400", rr.Code)
	}
}

func TestTrend_RollingSums(t *testing.T) {
	h := newTestServer(newMemStore())
	created := createTestHabit(t, h, habit.Habit{Name: "guitar", FrequencyPerWeek: 3})

	today := habit.StripTime(time.Now())
	for _, daysAgo := range []int{0, 1, 3} {
		d := habit.AddDays(today, -daysAgo)
		addTestCheckIn(t, h, created.UUID, d.Format("2006-01-02"), habit.CheckInValueSuccess)
	}
	// excused day must not contribute
	addTestCheckIn(t, h, created.UUID, habit.AddDays(today, -2).Format("2006-01-02"), habit.CheckInValueDayOff)

	rr := mockRequest(h, http.MethodGet, "/habits/"+created.UUID.String()+"/trend?window=7", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	var resp TrendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DayWindow != 7 {
		t.Errorf("day window = %d want 7", resp.DayWindow)
	}

	// series starts at the first check-in, not 30 days back
	if len(resp.Points) != 4 {
		t.Fatalf("points=%d want 4", len(resp.Points))
	}
	first := habit.StripTime(resp.Points[0].Date)
	if !first.Equal(habit.AddDays(today, -3)) {
		t.Errorf("series starts %v want %v", first, habit.AddDays(today, -3))
	}
	wantSums := []int{1, 1, 2, 3}
	for i, p := range resp.Points {
		if p.RollingSum != wantSums[i] {
			t.Errorf("point %d sum = %d want %d", i, p.RollingSum, wantSums[i])
		}
	}
}

func TestTrend_NoCheckIns(t *testing.T) {
	h := newTestServer(newMemStore())
	created := createTestHabit(t, h, habit.Habit{Name: "guitar"})

	rr := mockRequest(h, http.MethodGet, "/habits/"+created.UUID.String()+"/trend", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	var resp TrendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Points) != 0 {
		t.Errorf("points=%d want 0", len(resp.Points))
	}
}
