package shift

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateShiftRequest struct {
	Name                     string  `json:"name"`
	ShiftTypeID              *string `json:"shift_type_id,omitempty"`
	StartTime                string  `json:"start_time"` // HH:MM format
	EndTime                  string  `json:"end_time"`   // HH:MM format
	PunchPolicy              string  `json:"punch_policy"`
	GraceInMinutes           *int    `json:"grace_in_minutes"`
	GraceOutMinutes          *int    `json:"grace_out_minutes"`
	RequiresOvertimeApproval bool    `json:"requires_overtime_approval"`
	Active                   *bool   `json:"active,omitempty"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if r.PunchPolicy == "" {
		r.PunchPolicy = string(PunchPolicyMultiple)
	}
	if !validator.IsInSlice(r.PunchPolicy, PunchPolicyValues) {
		errs.Add("punch_policy", "punch_policy must be one of: "+strings.Join(PunchPolicyValues, ", "))
	}
	validateWindow(&errs, r.StartTime, r.EndTime)
	if r.GraceInMinutes != nil && *r.GraceInMinutes < 0 {
		errs.Add("grace_in_minutes", "grace_in_minutes must be a non-negative number")
	}
	if r.GraceOutMinutes != nil && *r.GraceOutMinutes < 0 {
		errs.Add("grace_out_minutes", "grace_out_minutes must be a non-negative number")
	}

	return errs.Err()
}

type UpdateShiftRequest struct {
	ID                       string  `json:"-"`
	Name                     *string `json:"name,omitempty"`
	ShiftTypeID              *string `json:"shift_type_id,omitempty"`
	StartTime                *string `json:"start_time,omitempty"`
	EndTime                  *string `json:"end_time,omitempty"`
	PunchPolicy              *string `json:"punch_policy,omitempty"`
	GraceInMinutes           *int    `json:"grace_in_minutes,omitempty"`
	GraceOutMinutes          *int    `json:"grace_out_minutes,omitempty"`
	RequiresOvertimeApproval *bool   `json:"requires_overtime_approval,omitempty"`
	Active                   *bool   `json:"active,omitempty"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.PunchPolicy != nil && !validator.IsInSlice(*r.PunchPolicy, PunchPolicyValues) {
		errs.Add("punch_policy", "punch_policy must be one of: "+strings.Join(PunchPolicyValues, ", "))
	}
	if r.StartTime != nil {
		if _, ok := validator.IsValidTime(*r.StartTime); !ok {
			errs.Add("start_time", "start_time must be a valid time in HH:MM format")
		}
	}
	if r.EndTime != nil {
		if _, ok := validator.IsValidTime(*r.EndTime); !ok {
			errs.Add("end_time", "end_time must be a valid time in HH:MM format")
		}
	}
	if r.GraceInMinutes != nil && *r.GraceInMinutes < 0 {
		errs.Add("grace_in_minutes", "grace_in_minutes must be a non-negative number")
	}
	if r.GraceOutMinutes != nil && *r.GraceOutMinutes < 0 {
		errs.Add("grace_out_minutes", "grace_out_minutes must be a non-negative number")
	}

	return errs.Err()
}

func validateWindow(errs *validator.ValidationErrors, start, end string) {
	startOK, endOK := true, true
	if _, ok := validator.IsValidTime(start); !ok {
		errs.Add("start_time", "start_time must be a valid time in HH:MM format")
		startOK = false
	}
	if _, ok := validator.IsValidTime(end); !ok {
		errs.Add("end_time", "end_time must be a valid time in HH:MM format")
		endOK = false
	}
	// HH:MM strings order lexically
	if startOK && endOK && start >= end {
		errs.Add("start_time", "start_time must be before end_time")
	}
}

type ShiftFilter struct {
	ShiftTypeID *string
	ActiveOnly  bool
}

type ShiftResponse struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	ShiftTypeID              *string `json:"shift_type_id,omitempty"`
	StartTime                string  `json:"start_time"`
	EndTime                  string  `json:"end_time"`
	PunchPolicy              string  `json:"punch_policy"`
	GraceInMinutes           int     `json:"grace_in_minutes"`
	GraceOutMinutes          int     `json:"grace_out_minutes"`
	RequiresOvertimeApproval bool    `json:"requires_overtime_approval"`
	Active                   bool    `json:"active"`
	CreatedAt                string  `json:"created_at"`
	UpdatedAt                string  `json:"updated_at"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:                       s.ID,
		Name:                     s.Name,
		ShiftTypeID:              s.ShiftTypeID,
		StartTime:                s.Start.String(),
		EndTime:                  s.End.String(),
		PunchPolicy:              string(s.PunchPolicy),
		GraceInMinutes:           s.GraceInMinutes,
		GraceOutMinutes:          s.GraceOutMinutes,
		RequiresOvertimeApproval: s.RequiresOvertimeApproval,
		Active:                   s.Active,
		CreatedAt:                s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                s.UpdatedAt.Format(time.RFC3339),
	}
}

type CreateShiftTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active,omitempty"`
}

func (r *CreateShiftTypeRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	return errs.Err()
}

type UpdateShiftTypeRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (r *UpdateShiftTypeRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	return errs.Err()
}

type ShiftTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func NewShiftTypeResponse(t ShiftType) ShiftTypeResponse {
	return ShiftTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Active:      t.Active,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}
