package assignment

import (
	"context"
	"time"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	GetByID(ctx context.Context, id string) (Assignment, error)
	Update(ctx context.Context, a Assignment) (Assignment, error)
	// UpdateStatus moves id from status from to status to. It reports false, and writes nothing,
	// when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteBySubject(ctx context.Context, subject Subject) (int, error)

	ListBySubject(ctx context.Context, subject Subject) ([]Assignment, error)
	ListBySubjectType(ctx context.Context, subjectType SubjectType) ([]Assignment, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]Assignment, error)

	// FindOverlapping returns non-cancelled assignments of subject sharing a day with [start, end], skipping excludeIDs.
	FindOverlapping(ctx context.Context, subject Subject, start time.Time, end *time.Time, excludeIDs ...string) ([]Assignment, error)
	// ListCovering returns non-cancelled assignments of any of subjects whose range contains date.
	ListCovering(ctx context.Context, subjects []Subject, date time.Time) ([]Assignment, error)
	// ListEndedBefore returns non-cancelled assignments whose end date is before day.
	ListEndedBefore(ctx context.Context, day time.Time) ([]Assignment, error)
	CountLiveByShiftID(ctx context.Context, shiftID string) (int, error)

	// LockSubject serializes writers of subject until the surrounding transaction ends.
	LockSubject(ctx context.Context, subject Subject) error
}

// SubjectDirectory resolves subjects owned by the employee and organization modules.
type SubjectDirectory interface {
	Exists(ctx context.Context, subject Subject) (bool, error)
	EmployeePlacement(ctx context.Context, employeeID string) (departmentID, positionID *string, err error)
}
