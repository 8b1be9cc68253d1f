package assignment

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// IsLive reports whether the assignment still binds its subject to a shift.
func (s Status) IsLive() bool {
	return s == StatusPending || s == StatusApproved
}

type SubjectType string

const (
	SubjectEmployee   SubjectType = "EMPLOYEE"
	SubjectDepartment SubjectType = "DEPARTMENT"
	SubjectPosition   SubjectType = "POSITION"
)

// ParseSubjectType maps a route segment ("employee", "department", "position") to a SubjectType.
func ParseSubjectType(segment string) (SubjectType, bool) {
	switch segment {
	case "employee":
		return SubjectEmployee, true
	case "department":
		return SubjectDepartment, true
	case "position":
		return SubjectPosition, true
	}
	return "", false
}

// Subject is the employee, department or position an assignment is scoped to.
type Subject struct {
	Type SubjectType
	ID   string
}

// Key identifies the subject for locking.
func (s Subject) Key() string {
	return string(s.Type) + ":" + s.ID
}

type Assignment struct {
	ID             string
	Subject        Subject
	ShiftID        string
	ScheduleRuleID *string
	StartDate      time.Time
	EndDate        *time.Time // nil means open-ended
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Covers reports whether date lies within [StartDate, EndDate].
func (a Assignment) Covers(date time.Time) bool {
	if date.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !date.After(*a.EndDate)
}

// Overlaps reports whether a and the range [start, end] share at least one day.
// A nil end is treated as open-ended.
func (a Assignment) Overlaps(start time.Time, end *time.Time) bool {
	return RangesOverlap(a.StartDate, a.EndDate, start, end)
}

func RangesOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}

// ActiveShift is the shift of record for an employee on a given day.
type ActiveShift struct {
	Assignment Assignment
	Shift      shift.Shift
}

// SweepSummary reports the outcome of a batch status sweep.
type SweepSummary struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	// Skipped counts rows whose status changed between listing and writing.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
