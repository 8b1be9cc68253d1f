package schedulerule

import "time"

// ScheduleRule is a custom weekly work pattern attached to shift assignments.
type ScheduleRule struct {
	ID        string
	Name      string
	WorkDays  []int // ISO weekdays, 1 = Monday .. 7 = Sunday
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ISOWeekday converts t's weekday to 1 (Monday) .. 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWorkDay reports whether date falls on one of the rule's work days.
// An inactive rule does not restrict anything.
func (r ScheduleRule) IsWorkDay(date time.Time) bool {
	if !r.Active {
		return true
	}
	iso := ISOWeekday(date)
	for _, d := range r.WorkDays {
		if d == iso {
			return true
		}
	}
	return false
}
