package schedulerule

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrScheduleRuleNotFound   = apperror.NotFound("schedule rule not found")
	ErrScheduleRuleNameExists = apperror.Conflict("schedule rule with this name already exists")
)
