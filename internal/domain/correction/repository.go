package correction

import (
	"context"
	"time"
)

type RequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, error)
	// Update persists req if the stored version equals expectedVersion and bumps the version.
	Update(ctx context.Context, req Request, expectedVersion int) (Request, error)
	// Delete removes id while it is IN_REVIEW at expectedVersion.
	Delete(ctx context.Context, id string, expectedVersion int) error

	CountInReviewByRecord(ctx context.Context, recordID string) (int, error)
	// ListEscalationCandidates returns IN_REVIEW, unescalated requests whose record work date is on or before cutoff.
	ListEscalationCandidates(ctx context.Context, cutoff time.Time) ([]Request, error)
	// MarkEscalated flags a request once; it reports false when the request was already escalated or decided.
	MarkEscalated(ctx context.Context, id string, at time.Time) (bool, error)
}
