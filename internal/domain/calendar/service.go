package calendar

import (
	"context"
	"time"
)

// Checker answers calendar predicates for the scheduling and overtime calculators.
type Checker interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	IsWeekend(date time.Time) bool
}

type CalendarService interface {
	Checker

	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetHoliday(ctx context.Context, id string) (HolidayResponse, error)
	ListHolidays(ctx context.Context, filter HolidayFilter) ([]HolidayResponse, error)
	UpdateHoliday(ctx context.Context, req UpdateHolidayRequest) (HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error

	// IsBlackout reports whether date is blocked for shift boundaries.
	IsBlackout(ctx context.Context, date time.Time) (bool, error)
}
