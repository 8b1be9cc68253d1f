package shift

import "context"

type ShiftRepository interface {
	Create(ctx context.Context, shift Shift) (Shift, error)
	GetByID(ctx context.Context, id string) (Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]Shift, error)
	Update(ctx context.Context, shift Shift) (Shift, error)
	Delete(ctx context.Context, id string) error
}

type ShiftTypeRepository interface {
	Create(ctx context.Context, shiftType ShiftType) (ShiftType, error)
	GetByID(ctx context.Context, id string) (ShiftType, error)
	List(ctx context.Context) ([]ShiftType, error)
	Update(ctx context.Context, shiftType ShiftType) (ShiftType, error)
	Delete(ctx context.Context, id string) error
}

// UsageChecker reports whether live assignments still reference a shift.
type UsageChecker interface {
	CountLiveByShiftID(ctx context.Context, shiftID string) (int, error)
}
