package schedulerule

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateScheduleRuleRequest struct {
	Name     string `json:"name"`
	WorkDays []int  `json:"work_days"`
	Active   *bool  `json:"active,omitempty"`
}

func (r *CreateScheduleRuleRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	validateWorkDays(&errs, r.WorkDays)
	return errs.Err()
}

type UpdateScheduleRuleRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name,omitempty"`
	WorkDays []int   `json:"work_days,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (r *UpdateScheduleRuleRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.WorkDays != nil {
		validateWorkDays(&errs, r.WorkDays)
	}
	return errs.Err()
}

func validateWorkDays(errs *validator.ValidationErrors, days []int) {
	if len(days) == 0 {
		errs.Add("work_days", "at least one work day is required")
		return
	}
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if !validator.IsISOWeekday(d) {
			errs.Add("work_days", "work_days must contain ISO weekdays between 1 (Monday) and 7 (Sunday)")
			return
		}
		if seen[d] {
			errs.Add("work_days", "work_days must not contain duplicates")
			return
		}
		seen[d] = true
	}
}

type ScheduleRuleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WorkDays  []int  `json:"work_days"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func NewScheduleRuleResponse(r ScheduleRule) ScheduleRuleResponse {
	return ScheduleRuleResponse{
		ID:        r.ID,
		Name:      r.Name,
		WorkDays:  r.WorkDays,
		Active:    r.Active,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}
