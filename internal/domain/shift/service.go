package shift

import "context"

type ShiftService interface {
	// Shift
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	GetShift(ctx context.Context, id string) (ShiftResponse, error)
	ListShifts(ctx context.Context, filter ShiftFilter) ([]ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error

	// Shift Type
	CreateShiftType(ctx context.Context, req CreateShiftTypeRequest) (ShiftTypeResponse, error)
	GetShiftType(ctx context.Context, id string) (ShiftTypeResponse, error)
	ListShiftTypes(ctx context.Context) ([]ShiftTypeResponse, error)
	UpdateShiftType(ctx context.Context, req UpdateShiftTypeRequest) (ShiftTypeResponse, error)
	DeleteShiftType(ctx context.Context, id string) error
}
