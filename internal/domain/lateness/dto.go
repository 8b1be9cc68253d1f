package lateness

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateRuleRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	GracePeriodMinutes int             `json:"grace_period_minutes"`
	DeductionPerMinute decimal.Decimal `json:"deduction_per_minute"`
	Active             bool            `json:"active"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if r.GracePeriodMinutes < 0 {
		errs.Add("grace_period_minutes", "grace_period_minutes must be a non-negative number")
	}
	if r.DeductionPerMinute.IsNegative() {
		errs.Add("deduction_per_minute", "deduction_per_minute must be a non-negative amount")
	}

	return errs.Err()
}

type UpdateRuleRequest struct {
	ID                 string           `json:"-"`
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	GracePeriodMinutes *int             `json:"grace_period_minutes,omitempty"`
	DeductionPerMinute *decimal.Decimal `json:"deduction_per_minute,omitempty"`
	Active             *bool            `json:"active,omitempty"`
}

func (r *UpdateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.GracePeriodMinutes != nil && *r.GracePeriodMinutes < 0 {
		errs.Add("grace_period_minutes", "grace_period_minutes must be a non-negative number")
	}
	if r.DeductionPerMinute != nil && r.DeductionPerMinute.IsNegative() {
		errs.Add("deduction_per_minute", "deduction_per_minute must be a non-negative amount")
	}

	return errs.Err()
}

type CalculateRequest struct {
	ShiftID  string `json:"shift_id"`
	WorkDate string `json:"work_date"`
	PunchIn  string `json:"punch_in"` // RFC3339
}

func (r *CalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ShiftID) {
		errs.Add("shift_id", "shift_id must be a valid UUID")
	}
	if _, ok := validator.IsValidDate(r.WorkDate); !ok {
		errs.Add("work_date", "work_date must be in YYYY-MM-DD format")
	}
	if _, ok := validator.IsValidDateTime(r.PunchIn); !ok {
		errs.Add("punch_in", "punch_in must be an RFC3339 timestamp")
	}

	return errs.Err()
}

type RuleResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	GracePeriodMinutes int             `json:"grace_period_minutes"`
	DeductionPerMinute decimal.Decimal `json:"deduction_per_minute"`
	Active             bool            `json:"active"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

func NewRuleResponse(r Rule) RuleResponse {
	return RuleResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		GracePeriodMinutes: r.GracePeriodMinutes,
		DeductionPerMinute: r.DeductionPerMinute,
		Active:             r.Active,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
}
