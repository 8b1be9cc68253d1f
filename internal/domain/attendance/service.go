package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
)

type AttendanceService interface {
	Create(ctx context.Context, req CreateRecordRequest) (RecordResponse, error)
	Get(ctx context.Context, id string) (RecordResponse, error)
	List(ctx context.Context, filter RecordFilter) ([]RecordResponse, error)
	Update(ctx context.Context, req UpdateRecordRequest) (RecordResponse, error)
	Delete(ctx context.Context, id string) error
	Finalize(ctx context.Context, id string, expectedVersion int) (RecordResponse, error)

	// ApplyPunches replaces the punches of a record and recomputes every derived field.
	ApplyPunches(ctx context.Context, id string, punches []Punch) (Record, error)
	Overtime(ctx context.Context, id string, ruleID string) (overtime.Result, error)
}
