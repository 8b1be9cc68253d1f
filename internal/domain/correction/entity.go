package correction

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

type Status string

const (
	StatusInReview Status = "IN_REVIEW"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Request struct {
	ID                 string
	EmployeeID         string
	AttendanceRecordID string
	Reason             string
	ProposedPunches    []attendance.Punch // nil when the request only disputes the record
	Status             Status
	ReviewerID         *string
	ReviewNote         *string
	ReviewedAt         *time.Time
	Escalated          bool
	EscalatedAt        *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EscalationResult reports the requests pushed past the payroll cutoff in one run.
type EscalationResult struct {
	Cutoff string   `json:"cutoff"`
	Count  int      `json:"count"`
	IDs    []string `json:"ids"`
	// Failed counts candidates whose escalation write returned an error.
	Failed int `json:"failed"`
}
