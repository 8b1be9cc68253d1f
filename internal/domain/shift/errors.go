package shift

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrShiftNotFound      = apperror.NotFound("shift not found")
	ErrShiftNameExists    = apperror.Conflict("shift with this name already exists")
	ErrShiftInUse         = apperror.Conflict("shift is referenced by live shift assignments")
	ErrShiftStartAfterEnd = apperror.Validation("shift start time must be before end time")

	ErrShiftTypeNotFound   = apperror.NotFound("shift type not found")
	ErrShiftTypeNameExists = apperror.Conflict("shift type with this name already exists")
)
