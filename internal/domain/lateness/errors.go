package lateness

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrRuleNotFound     = apperror.NotFound("lateness rule not found")
	ErrActiveRuleExists = apperror.Conflict("another lateness rule is already active")
)
