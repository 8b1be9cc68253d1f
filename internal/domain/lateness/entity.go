package lateness

import (
	"time"

	"github.com/shopspring/decimal"
)

type Rule struct {
	ID                 string
	Name               string
	Description        string
	GracePeriodMinutes int
	DeductionPerMinute decimal.Decimal
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Result is the lateness of a single punch-in. RuleID is nil when no rule was active.
type Result struct {
	RuleID      *string         `json:"rule_id,omitempty"`
	GraceEndsAt *time.Time      `json:"grace_ends_at,omitempty"`
	LateMinutes int             `json:"late_minutes"`
	Deduction   decimal.Decimal `json:"deduction"`
}
