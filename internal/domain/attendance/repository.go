package attendance

import "context"

type RecordRepository interface {
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter RecordFilter) ([]Record, error)
	// Update persists record if the stored version equals expectedVersion and bumps the version.
	Update(ctx context.Context, record Record, expectedVersion int) (Record, error)
	// Delete removes a record that is not finalized for payroll.
	Delete(ctx context.Context, id string) error
}

// ReviewCounter reports open correction requests against a record.
type ReviewCounter interface {
	CountInReviewByRecord(ctx context.Context, recordID string) (int, error)
}
