package assignment

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrAssignmentNotFound = apperror.NotFound("shift assignment not found")
	ErrAssignmentConflict = apperror.Conflict("shift assignment overlaps an existing assignment for this subject")
	ErrInvalidDateRange   = apperror.Validation("start_date must be before end_date")
	ErrHolidayBoundary    = apperror.Validation("shift assignment cannot start or end on a holiday")
	ErrSubjectNotFound    = apperror.NotFound("subject not found")
	ErrInvalidSubjectType = apperror.Validation("subject type must be one of: employee, department, position")
	ErrCannotCancel       = apperror.InvalidState("only pending or approved shift assignments can be cancelled")
	ErrAssignmentCanceled = apperror.InvalidState("shift assignment is cancelled")
	ErrStatusChanged      = apperror.InvalidState("shift assignment status changed concurrently, reload and retry")
	ErrNoActiveShift      = apperror.NotFound("no active shift assignment for this employee on the given date")
)
