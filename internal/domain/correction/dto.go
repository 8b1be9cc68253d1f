package correction

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// SubmitRequest is the self-service payload; the employee comes from the caller's token.
type SubmitRequest struct {
	AttendanceRecordID string                    `json:"attendance_record_id"`
	Reason             string                    `json:"reason"`
	ProposedPunches    []attendance.PunchRequest `json:"proposed_punches,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors
	r.validate(&errs)
	return errs.Err()
}

func (r *SubmitRequest) validate(errs *validator.ValidationErrors) {
	if !validator.IsValidUUID(r.AttendanceRecordID) {
		errs.Add("attendance_record_id", "attendance_record_id must be a valid UUID")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	attendance.ValidatePunches(errs, "proposed_punches", r.ProposedPunches)
}

// CreateRequest is filed by HR on behalf of an employee.
type CreateRequest struct {
	EmployeeID string `json:"employee_id"`
	SubmitRequest
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	r.SubmitRequest.validate(&errs)
	return errs.Err()
}

type UpdateRequest struct {
	ID              string                    `json:"-"`
	EmployeeID      string                    `json:"-"`
	Reason          *string                   `json:"reason,omitempty"`
	ProposedPunches []attendance.PunchRequest `json:"proposed_punches,omitempty"`
	ExpectedVersion int                       `json:"expected_version"`
}

func (r *UpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ExpectedVersion < 1 {
		errs.Add("expected_version", "expected_version is required")
	}
	if r.Reason != nil && validator.IsEmpty(*r.Reason) {
		errs.Add("reason", "reason must not be empty")
	}
	attendance.ValidatePunches(&errs, "proposed_punches", r.ProposedPunches)
	return errs.Err()
}

type ReviewRequest struct {
	ID              string  `json:"-"`
	ReviewerID      string  `json:"-"`
	Note            *string `json:"note,omitempty"`
	ExpectedVersion int     `json:"expected_version"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ReviewerID) {
		errs.Add("reviewer_id", "reviewer_id is required")
	}
	if r.ExpectedVersion < 1 {
		errs.Add("expected_version", "expected_version is required")
	}
	return errs.Err()
}

type WithdrawRequest struct {
	ID              string
	EmployeeID      string
	ExpectedVersion int
	// AsReviewer lets HR withdraw on behalf of the submitter.
	AsReviewer bool
}

func (r *WithdrawRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ExpectedVersion < 1 {
		errs.Add("expected_version", "expected_version is required")
	}
	return errs.Err()
}

type RequestFilter struct {
	EmployeeID         *string
	AttendanceRecordID *string
	Status             *Status
	EscalatedOnly      bool
}

type RequestResponse struct {
	ID                 string             `json:"id"`
	EmployeeID         string             `json:"employee_id"`
	AttendanceRecordID string             `json:"attendance_record_id"`
	Reason             string             `json:"reason"`
	ProposedPunches    []attendance.Punch `json:"proposed_punches,omitempty"`
	Status             string             `json:"status"`
	ReviewerID         *string            `json:"reviewer_id,omitempty"`
	ReviewNote         *string            `json:"review_note,omitempty"`
	ReviewedAt         *string            `json:"reviewed_at,omitempty"`
	Escalated          bool               `json:"escalated"`
	EscalatedAt        *string            `json:"escalated_at,omitempty"`
	Version            int                `json:"version"`
	CreatedAt          string             `json:"created_at"`
	UpdatedAt          string             `json:"updated_at"`
}

func NewRequestResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		AttendanceRecordID: r.AttendanceRecordID,
		Reason:             r.Reason,
		ProposedPunches:    r.ProposedPunches,
		Status:             string(r.Status),
		ReviewerID:         r.ReviewerID,
		ReviewNote:         r.ReviewNote,
		Escalated:          r.Escalated,
		Version:            r.Version,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		at := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &at
	}
	if r.EscalatedAt != nil {
		at := r.EscalatedAt.Format(time.RFC3339)
		resp.EscalatedAt = &at
	}
	return resp
}
