package overtime

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateRuleRequest struct {
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	MinHours   *decimal.Decimal `json:"min_hours,omitempty"`
	Active     bool             `json:"active"`
	Approved   bool             `json:"approved"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !validator.IsInSlice(r.Kind, KindValues) {
		errs.Add("kind", "kind must be one of: "+strings.Join(KindValues, ", "))
	}
	validateParams(&errs, r.Multiplier, r.MinHours)

	return errs.Err()
}

type UpdateRuleRequest struct {
	ID         string           `json:"-"`
	Name       *string          `json:"name,omitempty"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	MinHours   *decimal.Decimal `json:"min_hours,omitempty"`
	Active     *bool            `json:"active,omitempty"`
	Approved   *bool            `json:"approved,omitempty"`
}

func (r *UpdateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	validateParams(&errs, r.Multiplier, r.MinHours)

	return errs.Err()
}

func validateParams(errs *validator.ValidationErrors, multiplier, minHours *decimal.Decimal) {
	if multiplier != nil && !multiplier.IsPositive() {
		errs.Add("multiplier", "multiplier must be greater than zero")
	}
	if minHours != nil && minHours.IsNegative() {
		errs.Add("min_hours", "min_hours must be a non-negative number")
	}
}

type RuleResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Multiplier decimal.Decimal `json:"multiplier"`
	MinHours   decimal.Decimal `json:"min_hours"`
	Active     bool            `json:"active"`
	Approved   bool            `json:"approved"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

func NewRuleResponse(r Rule) RuleResponse {
	return RuleResponse{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       string(r.Kind),
		Multiplier: r.Multiplier,
		MinHours:   r.MinHours,
		Active:     r.Active,
		Approved:   r.Approved,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}
