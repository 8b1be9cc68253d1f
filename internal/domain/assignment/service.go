package assignment

import (
	"context"
	"time"
)

type AssignmentService interface {
	Create(ctx context.Context, subjectType SubjectType, req CreateAssignmentRequest) (AssignmentResponse, error)
	Get(ctx context.Context, id string) (AssignmentResponse, error)
	ListBySubjectType(ctx context.Context, subjectType SubjectType) ([]AssignmentResponse, error)
	ListBySubject(ctx context.Context, subject Subject) ([]AssignmentResponse, error)
	UpdateBySubject(ctx context.Context, subject Subject, req UpdateBySubjectRequest) ([]AssignmentResponse, error)
	DeleteBySubject(ctx context.Context, subject Subject) (int, error)
	Delete(ctx context.Context, id string) error

	Approve(ctx context.Context, id string) (AssignmentResponse, error)
	Cancel(ctx context.Context, id string) (AssignmentResponse, error)

	ListExpiring(ctx context.Context, before time.Time) ([]ExpiringShiftResponse, error)
	ListExpired(ctx context.Context) ([]AssignmentResponse, error)
	ExpireAll(ctx context.Context) (SweepSummary, error)
	RecalculateAll(ctx context.Context) (SweepSummary, error)

	GetActiveShift(ctx context.Context, employeeID string, date time.Time) (ActiveShift, error)
}

// ShiftResolver finds the shift of record for an employee on a day.
type ShiftResolver interface {
	GetActiveShift(ctx context.Context, employeeID string, date time.Time) (ActiveShift, error)
}
