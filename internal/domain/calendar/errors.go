package calendar

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrHolidayNotFound = apperror.NotFound("holiday not found")
	ErrInvalidRange    = apperror.Validation("holiday end_date must not be before start_date")
)
