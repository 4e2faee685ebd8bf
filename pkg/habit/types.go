package habit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultFrequencyPerWeek mirrors the default applied when a habit is
	// created without an explicit weekly target.
	DefaultFrequencyPerWeek = 1

	// MaxReminderNotificationCount caps how many one-shot notification
	// entries a full schedule rebuild may register with the backend.
	MaxReminderNotificationCount = 50
)

// CheckInType determines which check-in values are legal for a habit and how
// a checked-in day is rendered.
type CheckInType string

const (
	// CheckInTypeBinary habits only record successful check-ins.
	CheckInTypeBinary CheckInType = "binary"
	// CheckInTypeSuccessFail habits record explicit successes and failures.
	CheckInTypeSuccessFail CheckInType = "success_fail"
	// CheckInTypeLetterGrade habits grade each day A through F and may also
	// record an explicit day off.
	CheckInTypeLetterGrade CheckInType = "letter_grade"
	// CheckInTypeSentiment habits record how the day felt on a five point
	// scale.
	CheckInTypeSentiment CheckInType = "sentiment"
)

// CheckInValue is the typed payload of a single check-in.
type CheckInValue string

const (
	CheckInValueSuccess CheckInValue = "success"
	CheckInValueFailure CheckInValue = "failure"

	// CheckInValueDayOff is the explicit "excused, don't count me" override.
	// It never counts toward a habit's weekly frequency.
	CheckInValueDayOff CheckInValue = "day_off"

	CheckInValueGradeA CheckInValue = "grade_a"
	CheckInValueGradeB CheckInValue = "grade_b"
	CheckInValueGradeC CheckInValue = "grade_c"
	CheckInValueGradeD CheckInValue = "grade_d"
	CheckInValueGradeF CheckInValue = "grade_f"

	CheckInValueVeryLow  CheckInValue = "very_low"
	CheckInValueLow      CheckInValue = "low"
	CheckInValueNeutral  CheckInValue = "neutral"
	CheckInValueHigh     CheckInValue = "high"
	CheckInValueVeryHigh CheckInValue = "very_high"
)

func (v CheckInValue) IsDayOff() bool {
	return v == CheckInValueDayOff
}

var legalValues = map[CheckInType][]CheckInValue{
	CheckInTypeBinary:      {CheckInValueSuccess},
	CheckInTypeSuccessFail: {CheckInValueSuccess, CheckInValueFailure},
	CheckInTypeLetterGrade: {
		CheckInValueGradeA, CheckInValueGradeB, CheckInValueGradeC,
		CheckInValueGradeD, CheckInValueGradeF, CheckInValueDayOff,
	},
	CheckInTypeSentiment: {
		CheckInValueVeryLow, CheckInValueLow, CheckInValueNeutral,
		CheckInValueHigh, CheckInValueVeryHigh,
	},
}

// AllowsValue reports whether a check-in value is legal for habits of this
// type.
func (t CheckInType) AllowsValue(v CheckInValue) bool {
	for _, legal := range legalValues[t] {
		if v == legal {
			return true
		}
	}
	return false
}

func (t CheckInType) Valid() bool {
	_, ok := legalValues[t]
	return ok
}

// Habit is a tracked activity with a weekly frequency target.
type Habit struct {
	UUID                uuid.UUID   `json:"uuid"`
	CreatedAt           int64       `json:"created_at"`
	Name                string      `json:"name"`
	Order               int         `json:"order"`
	FrequencyPerWeek    int         `json:"frequency_per_week"`
	InactiveDaysOfWeek  WeekdaySet  `json:"inactive_days_of_week"`
	CheckInCooldownDays int         `json:"check_in_cooldown_days"`
	CheckInType         CheckInType `json:"check_in_type"`
}

// CheckIn records that a habit was performed (or excused) on a calendar day.
// CheckInDate is the logical day the check-in applies to, always stripped to
// local midnight; CreatedAt is when it was actually recorded.
type CheckIn struct {
	UUID        uuid.UUID    `json:"uuid"`
	HabitUUID   uuid.UUID    `json:"habit_uuid"`
	CreatedAt   int64        `json:"created_at"`
	CheckInDate time.Time    `json:"check_in_date"`
	Value       CheckInValue `json:"value"`
}

func (c *CheckIn) IsDayOff() bool {
	return c.Value.IsDayOff()
}

// AddedVsCheckInDateDayOffset is how many days after the check-in's logical
// date it was recorded. Positive means it was backdated.
func (c *CheckIn) AddedVsCheckInDateDayOffset() int {
	return DaysBetween(c.CheckInDate, time.Unix(c.CreatedAt, 0))
}

func (c *CheckIn) WasAddedForPriorDate() bool {
	return c.AddedVsCheckInDateDayOffset() > 0
}

// Reminder is a weekly recurring notification slot owned by a habit.
type Reminder struct {
	UUID          uuid.UUID  `json:"uuid"`
	HabitUUID     uuid.UUID  `json:"habit_uuid"`
	CreatedAt     int64      `json:"created_at"`
	Hour          int        `json:"hour"`
	Minute        int        `json:"minute"`
	FrequencyDays WeekdaySet `json:"frequency_days"`
}

func (r *Reminder) TimeOfDay() TimeOfDay {
	return TimeOfDay{Hour: r.Hour, Minute: r.Minute}
}

func (r *Reminder) TimeInMinutes() int {
	return r.Hour*60 + r.Minute
}

func (r *Reminder) IsActiveOnDay(weekdayOffset int) bool {
	return r.FrequencyDays.Contains(weekdayOffset)
}

// DayState classifies a single calendar date of a habit's check-in grid.
// Exactly one state applies per date.
type DayState int

const (
	// DayStateNotStarted dates precede the habit's first check-in ever.
	DayStateNotStarted DayState = iota
	// DayStateDayOff dates carry an explicit day-off check-in.
	DayStateDayOff
	// DayStateCooldown dates fall inside the rest window that follows a
	// qualifying check-in.
	DayStateCooldown
	// DayStateScheduledInactive dates land on one of the habit's inactive
	// weekdays.
	DayStateScheduledInactive
	// DayStateActive dates are regular tracked days, with or without
	// check-ins.
	DayStateActive
)

func (s DayState) String() string {
	switch s {
	case DayStateNotStarted:
		return "not_started"
	case DayStateDayOff:
		return "day_off"
	case DayStateCooldown:
		return "cooldown"
	case DayStateScheduledInactive:
		return "scheduled_inactive"
	case DayStateActive:
		return "active"
	}
	return "unknown"
}

func (s DayState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DayState) UnmarshalText(data []byte) error {
	switch string(data) {
	case "not_started":
		*s = DayStateNotStarted
	case "day_off":
		*s = DayStateDayOff
	case "cooldown":
		*s = DayStateCooldown
	case "scheduled_inactive":
		*s = DayStateScheduledInactive
	case "active":
		*s = DayStateActive
	default:
		return fmt.Errorf("unknown day state %q", data)
	}
	return nil
}
