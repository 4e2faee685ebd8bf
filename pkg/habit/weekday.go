package habit

import "encoding/json"

// Weekday offsets run 0 (Sunday) through 6 (Saturday), matching time.Weekday.
const NumWeekdays = 7

// WeekdaySet is a set of weekday offsets backed by a bitmask, where bit i
// marks weekday i as a member. The zero value is the empty set.
type WeekdaySet uint8

const weekdayMaskAll = 1<<NumWeekdays - 1

var (
	AllDays  = WeekdaySet(weekdayMaskAll)
	Weekdays = NewWeekdaySet(1, 2, 3, 4, 5)
	Weekends = NewWeekdaySet(0, 6)
)

// NewWeekdaySet builds a set from weekday offsets. Offsets outside [0,6] are
// silently dropped.
func NewWeekdaySet(offsets ...int) WeekdaySet {
	var s WeekdaySet
	for _, o := range offsets {
		if o >= 0 && o < NumWeekdays {
			s |= 1 << o
		}
	}
	return s
}

// WeekdaySetFromBitmask interprets an externally stored bitmask. Bits above
// the weekday range are discarded.
func WeekdaySetFromBitmask(bitmask int) WeekdaySet {
	return WeekdaySet(bitmask & weekdayMaskAll)
}

func (s WeekdaySet) Bitmask() int {
	return int(s)
}

func (s WeekdaySet) Contains(offset int) bool {
	if offset < 0 || offset >= NumWeekdays {
		return false
	}
	return s&(1<<offset) != 0
}

// Offsets returns the member weekday offsets in ascending order.
func (s WeekdaySet) Offsets() []int {
	out := make([]int, 0, NumWeekdays)
	for o := 0; o < NumWeekdays; o++ {
		if s.Contains(o) {
			out = append(out, o)
		}
	}
	return out
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

func (s WeekdaySet) Count() int {
	n := 0
	for o := 0; o < NumWeekdays; o++ {
		if s.Contains(o) {
			n++
		}
	}
	return n
}

// WeekdaySet serializes as an array of offsets, matching the export schema.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Offsets())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var offsets []int
	if err := json.Unmarshal(data, &offsets); err != nil {
		return err
	}
	*s = NewWeekdaySet(offsets...)
	return nil
}
