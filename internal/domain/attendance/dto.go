package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type PunchRequest struct {
	Type string `json:"type"`
	Time string `json:"time"` // RFC3339
}

// ValidatePunches checks a list of raw punches, reporting under field.
func ValidatePunches(errs *validator.ValidationErrors, field string, punches []PunchRequest) {
	for i, p := range punches {
		if p.Type != string(PunchIn) && p.Type != string(PunchOut) {
			errs.Add(fmt.Sprintf("%s[%d].type", field, i), "type must be IN or OUT")
		}
		if _, ok := validator.IsValidDateTime(p.Time); !ok {
			errs.Add(fmt.Sprintf("%s[%d].time", field, i), "time must be an RFC3339 timestamp")
		}
	}
}

// ToPunches converts validated requests to punches.
func ToPunches(reqs []PunchRequest) []Punch {
	out := make([]Punch, 0, len(reqs))
	for _, p := range reqs {
		t, _ := validator.IsValidDateTime(p.Time)
		out = append(out, Punch{Type: PunchType(p.Type), Time: t})
	}
	return out
}

type CreateRecordRequest struct {
	EmployeeID   string         `json:"employee_id"`
	WorkDate     string         `json:"work_date"`
	Punches      []PunchRequest `json:"punches"`
	ExceptionIDs []string       `json:"exception_ids,omitempty"`
}

func (r *CreateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if _, ok := validator.IsValidDate(r.WorkDate); !ok {
		errs.Add("work_date", "work_date must be in YYYY-MM-DD format")
	}
	ValidatePunches(&errs, "punches", r.Punches)

	return errs.Err()
}

type UpdateRecordRequest struct {
	ID              string         `json:"-"`
	Punches         []PunchRequest `json:"punches,omitempty"`
	ExceptionIDs    []string       `json:"exception_ids,omitempty"`
	ExpectedVersion int            `json:"expected_version"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ExpectedVersion < 1 {
		errs.Add("expected_version", "expected_version is required")
	}
	if r.Punches == nil && r.ExceptionIDs == nil {
		errs.Add("body", "punches or exception_ids must be provided")
	}
	ValidatePunches(&errs, "punches", r.Punches)

	return errs.Err()
}

type FinalizeRequest struct {
	ExpectedVersion int `json:"expected_version"`
}

func (r *FinalizeRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ExpectedVersion < 1 {
		errs.Add("expected_version", "expected_version is required")
	}
	return errs.Err()
}

type RecordFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Finalized  *bool
}

type RecordResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	WorkDate            string          `json:"work_date"`
	Punches             []Punch         `json:"punches"`
	FirstInAt           *string         `json:"first_in_at,omitempty"`
	TotalWorkMinutes    int             `json:"total_work_minutes"`
	HasMissedPunch      bool            `json:"has_missed_punch"`
	MissedPunchReason   *string         `json:"missed_punch_reason,omitempty"`
	ShiftID             *string         `json:"shift_id,omitempty"`
	LateMinutes         int             `json:"late_minutes"`
	LatenessDeduction   decimal.Decimal `json:"lateness_deduction"`
	ExceptionIDs        []string        `json:"exception_ids"`
	FinalizedForPayroll bool            `json:"finalized_for_payroll"`
	FinalizedAt         *string         `json:"finalized_at,omitempty"`
	Version             int             `json:"version"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

func NewRecordResponse(r Record) RecordResponse {
	resp := RecordResponse{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		WorkDate:            r.WorkDate.Format(validator.DateLayout),
		Punches:             r.Punches,
		TotalWorkMinutes:    r.TotalWorkMinutes,
		HasMissedPunch:      r.HasMissedPunch,
		MissedPunchReason:   r.MissedPunchReason,
		ShiftID:             r.ShiftID,
		LateMinutes:         r.LateMinutes,
		LatenessDeduction:   r.LatenessDeduction,
		ExceptionIDs:        r.ExceptionIDs,
		FinalizedForPayroll: r.FinalizedForPayroll,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           r.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Punches == nil {
		resp.Punches = []Punch{}
	}
	if resp.ExceptionIDs == nil {
		resp.ExceptionIDs = []string{}
	}
	if r.FirstInAt != nil {
		at := r.FirstInAt.Format(time.RFC3339)
		resp.FirstInAt = &at
	}
	if r.FinalizedAt != nil {
		at := r.FinalizedAt.Format(time.RFC3339)
		resp.FinalizedAt = &at
	}
	return resp
}
