package shift

import (
	"fmt"
	"time"
)

type PunchPolicy string

const (
	// PunchPolicyMultiple sums every IN->OUT pair of the day.
	PunchPolicyMultiple PunchPolicy = "MULTIPLE"
	// PunchPolicyFirstLast counts from the first IN to the last OUT.
	PunchPolicyFirstLast PunchPolicy = "FIRST_LAST"
)

var PunchPolicyValues = []string{
	string(PunchPolicyMultiple),
	string(PunchPolicyFirstLast),
}

type ShiftType struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Shift struct {
	ID                       string
	Name                     string
	ShiftTypeID              *string
	Start                    TimeOfDay
	End                      TimeOfDay
	PunchPolicy              PunchPolicy
	GraceInMinutes           int
	GraceOutMinutes          int
	RequiresOvertimeApproval bool
	Active                   bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// StartOn anchors the shift start to the calendar date of day in loc.
func (s Shift) StartOn(day time.Time, loc *time.Location) time.Time {
	return s.Start.On(day, loc)
}

// EndOn anchors the shift end to the calendar date of day in loc.
func (s Shift) EndOn(day time.Time, loc *time.Location) time.Time {
	return s.End.On(day, loc)
}

// TimeOfDay is a wall-clock time without a date, in minutes after midnight.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On returns the instant at which this time of day occurs on day's calendar date in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
}
