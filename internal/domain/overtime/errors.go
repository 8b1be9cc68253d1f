package overtime

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"

var (
	ErrRuleNotFound   = apperror.NotFound("overtime rule not found")
	ErrRuleNameExists = apperror.Conflict("overtime rule with this name already exists")
	ErrUnknownKind    = apperror.Validation("unknown overtime rule kind")
)
