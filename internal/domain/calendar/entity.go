package calendar

import "time"

type HolidayType string

const (
	HolidayTypeNational  HolidayType = "NATIONAL"
	HolidayTypeCompany   HolidayType = "COMPANY"
	HolidayTypeReligious HolidayType = "RELIGIOUS"
	HolidayTypeOther     HolidayType = "OTHER"
)

var HolidayTypeValues = []string{
	string(HolidayTypeNational),
	string(HolidayTypeCompany),
	string(HolidayTypeReligious),
	string(HolidayTypeOther),
}

type Holiday struct {
	ID        string
	Name      string
	Type      HolidayType
	StartDate time.Time
	EndDate   *time.Time // nil for a single-day holiday
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LastDay returns the final blacked-out date of the holiday.
func (h Holiday) LastDay() time.Time {
	if h.EndDate == nil {
		return h.StartDate
	}
	return *h.EndDate
}

// Covers reports whether date falls within the holiday, both ends inclusive.
func (h Holiday) Covers(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(h.StartDate)) && !d.After(DateOf(h.LastDay()))
}

// DateOf drops the clock part of t, keeping its calendar date in t's location, and returns it as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether date is a Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
