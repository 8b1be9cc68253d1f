package assignment

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateAssignmentRequest struct {
	SubjectID      string  `json:"subject_id"`
	ShiftID        string  `json:"shift_id"`
	ScheduleRuleID *string `json:"schedule_rule_id,omitempty"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
}

func (r *CreateAssignmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SubjectID) {
		errs.Add("subject_id", "subject_id is required")
	}
	if validator.IsEmpty(r.ShiftID) {
		errs.Add("shift_id", "shift_id is required")
	} else if !validator.IsValidUUID(r.ShiftID) {
		errs.Add("shift_id", "shift_id must be a valid UUID")
	}
	if r.ScheduleRuleID != nil && !validator.IsValidUUID(*r.ScheduleRuleID) {
		errs.Add("schedule_rule_id", "schedule_rule_id must be a valid UUID")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	if r.EndDate != nil && *r.EndDate != "" {
		end, endOK := validator.IsValidDate(*r.EndDate)
		if !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		} else if startOK && !start.Before(end) {
			errs.Add("end_date", "end_date must be after start_date")
		}
	}

	return errs.Err()
}

// Range returns the parsed dates. Call after Validate.
func (r *CreateAssignmentRequest) Range() (time.Time, *time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	return start, ParseOptionalDate(r.EndDate)
}

type UpdateBySubjectRequest struct {
	ShiftID        *string `json:"shift_id,omitempty"`
	ScheduleRuleID *string `json:"schedule_rule_id,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
}

func (r *UpdateBySubjectRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ShiftID != nil && !validator.IsValidUUID(*r.ShiftID) {
		errs.Add("shift_id", "shift_id must be a valid UUID")
	}
	if r.ScheduleRuleID != nil && *r.ScheduleRuleID != "" && !validator.IsValidUUID(*r.ScheduleRuleID) {
		errs.Add("schedule_rule_id", "schedule_rule_id must be a valid UUID")
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if r.ShiftID == nil && r.ScheduleRuleID == nil && r.StartDate == nil && r.EndDate == nil {
		errs.Add("body", "at least one field must be provided")
	}

	return errs.Err()
}

// ParseOptionalDate parses an optional YYYY-MM-DD value; empty means unset.
func ParseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &d
}

type AssignmentResponse struct {
	ID             string  `json:"id"`
	SubjectType    string  `json:"subject_type"`
	SubjectID      string  `json:"subject_id"`
	ShiftID        string  `json:"shift_id"`
	ScheduleRuleID *string `json:"schedule_rule_id,omitempty"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func NewAssignmentResponse(a Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:             a.ID,
		SubjectType:    string(a.Subject.Type),
		SubjectID:      a.Subject.ID,
		ShiftID:        a.ShiftID,
		ScheduleRuleID: a.ScheduleRuleID,
		StartDate:      a.StartDate.Format(validator.DateLayout),
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
	if a.EndDate != nil {
		end := a.EndDate.Format(validator.DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func NewAssignmentResponses(list []Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAssignmentResponse(a))
	}
	return out
}

type ExpiringShiftResponse struct {
	AssignmentResponse
	ShiftName string `json:"shift_name"`
	EndsAt    string `json:"ends_at"`
}
