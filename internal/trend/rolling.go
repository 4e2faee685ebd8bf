package trend

import (
	"time"

	"github.com/brk3/habitpanda/pkg/habit"
)

// DefaultDayWindow is the trailing window used for trend display.
const DefaultDayWindow = 7

// Point is one emitted day of a rolling-sum series.
type Point struct {
	Date       time.Time `json:"date"`
	RollingSum int       `json:"rolling_sum"`
}

// RollingSums computes a trailing dayWindow-day check-in sum for every day in
// [windowStart, windowEnd]. The check-ins belong to one habit; day-off
// check-ins don't count toward frequency and are skipped. Check-ins up to
// dayWindow-1 days before windowStart contribute so the first emitted point
// already has a full trailing window; the caller is expected to query the
// store with that extended range.
//
// The window slides one day at a time with a running sum (add the entering
// day, subtract the leaving day), so the whole series costs O(days) rather
// than O(days x dayWindow). A habit with no check-ins in range simply yields
// zeros.
func RollingSums(checkIns []habit.CheckIn, windowStart, windowEnd time.Time, dayWindow int) []Point {
	if dayWindow <= 0 {
		dayWindow = DefaultDayWindow
	}
	windowStart = habit.StripTime(windowStart)
	windowEnd = habit.StripTime(windowEnd)
	dayCount := habit.DaysBetween(windowStart, windowEnd) + 1
	if dayCount <= 0 {
		return nil
	}

	counts := make(map[int]int, len(checkIns))
	for i := range checkIns {
		c := &checkIns[i]
		if c.IsDayOff() {
			continue
		}
		counts[habit.DaysBetween(windowStart, c.CheckInDate)]++
	}

	points := make([]Point, 0, dayCount)
	rollingSum := 0
	for offset := 1 - dayWindow; offset < dayCount; offset++ {
		if offset >= 1 {
			rollingSum -= counts[offset-dayWindow]
		}
		rollingSum += counts[offset]
		if offset >= 0 {
			points = append(points, Point{
				Date:       habit.AddDays(windowStart, offset),
				RollingSum: rollingSum,
			})
		}
	}
	return points
}
