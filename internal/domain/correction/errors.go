package correction

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrRequestNotFound = apperror.NotFound("attendance correction request not found")
	ErrNotInReview     = apperror.InvalidState("attendance correction request has already been decided")
	ErrVersionConflict = apperror.Conflict("attendance correction request was modified concurrently, reload and retry")
	ErrNotSubmitter    = apperror.Forbidden("only the submitting employee can change this request")
	ErrMissingEmployee = apperror.Validation("caller is not linked to an employee")
	ErrForeignRecord   = apperror.Validation("attendance record does not belong to this employee")
)
