package attendance

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrRecordNotFound     = apperror.NotFound("attendance record not found")
	ErrRecordExists       = apperror.Conflict("attendance record already exists for this employee and work date")
	ErrVersionConflict    = apperror.Conflict("attendance record was modified concurrently, reload and retry")
	ErrRecordFinalized    = apperror.InvalidState("attendance record is finalized for payroll")
	ErrMissedPunch        = apperror.InvalidState("attendance record has a missed punch and cannot be finalized")
	ErrCorrectionInReview = apperror.InvalidState("attendance record has a correction request in review")
)
