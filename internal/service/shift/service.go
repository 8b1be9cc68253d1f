package shift

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

type shiftServiceImpl struct {
	shiftRepo     shift.ShiftRepository
	shiftTypeRepo shift.ShiftTypeRepository
	usage         shift.UsageChecker
}

func NewShiftService(shiftRepo shift.ShiftRepository, shiftTypeRepo shift.ShiftTypeRepository, usage shift.UsageChecker) shift.ShiftService {
	return &shiftServiceImpl{
		shiftRepo:     shiftRepo,
		shiftTypeRepo: shiftTypeRepo,
		usage:         usage,
	}
}

// CreateShift implements shift.ShiftService.
func (s *shiftServiceImpl) CreateShift(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	if req.ShiftTypeID != nil {
		if _, err := s.shiftTypeRepo.GetByID(ctx, *req.ShiftTypeID); err != nil {
			return shift.ShiftResponse{}, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	start, _ := shift.ParseTimeOfDay(req.StartTime)
	end, _ := shift.ParseTimeOfDay(req.EndTime)
	newShift := shift.Shift{
		ID:                       id.String(),
		Name:                     req.Name,
		ShiftTypeID:              req.ShiftTypeID,
		Start:                    start,
		End:                      end,
		PunchPolicy:              shift.PunchPolicy(req.PunchPolicy),
		RequiresOvertimeApproval: req.RequiresOvertimeApproval,
		Active:                   true,
	}
	if req.GraceInMinutes != nil {
		newShift.GraceInMinutes = *req.GraceInMinutes
	}
	if req.GraceOutMinutes != nil {
		newShift.GraceOutMinutes = *req.GraceOutMinutes
	}
	if req.Active != nil {
		newShift.Active = *req.Active
	}

	created, err := s.shiftRepo.Create(ctx, newShift)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.NewShiftResponse(created), nil
}

// GetShift implements shift.ShiftService.
func (s *shiftServiceImpl) GetShift(ctx context.Context, id string) (shift.ShiftResponse, error) {
	found, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.NewShiftResponse(found), nil
}

// ListShifts implements shift.ShiftService.
func (s *shiftServiceImpl) ListShifts(ctx context.Context, filter shift.ShiftFilter) ([]shift.ShiftResponse, error) {
	shifts, err := s.shiftRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	out := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		out = append(out, shift.NewShiftResponse(sh))
	}
	return out, nil
}

// UpdateShift implements shift.ShiftService.
func (s *shiftServiceImpl) UpdateShift(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	existing, err := s.shiftRepo.GetByID(ctx, req.ID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.ShiftTypeID != nil {
		if *req.ShiftTypeID == "" {
			existing.ShiftTypeID = nil
		} else {
			if _, err := s.shiftTypeRepo.GetByID(ctx, *req.ShiftTypeID); err != nil {
				return shift.ShiftResponse{}, err
			}
			existing.ShiftTypeID = req.ShiftTypeID
		}
	}
	if req.StartTime != nil {
		existing.Start, _ = shift.ParseTimeOfDay(*req.StartTime)
	}
	if req.EndTime != nil {
		existing.End, _ = shift.ParseTimeOfDay(*req.EndTime)
	}
	if req.PunchPolicy != nil {
		existing.PunchPolicy = shift.PunchPolicy(*req.PunchPolicy)
	}
	if req.GraceInMinutes != nil {
		existing.GraceInMinutes = *req.GraceInMinutes
	}
	if req.GraceOutMinutes != nil {
		existing.GraceOutMinutes = *req.GraceOutMinutes
	}
	if req.RequiresOvertimeApproval != nil {
		existing.RequiresOvertimeApproval = *req.RequiresOvertimeApproval
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}

	if existing.Start >= existing.End {
		return shift.ShiftResponse{}, shift.ErrShiftStartAfterEnd
	}

	updated, err := s.shiftRepo.Update(ctx, existing)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.NewShiftResponse(updated), nil
}

// DeleteShift implements shift.ShiftService.
func (s *shiftServiceImpl) DeleteShift(ctx context.Context, id string) error {
	if _, err := s.shiftRepo.GetByID(ctx, id); err != nil {
		return err
	}

	live, err := s.usage.CountLiveByShiftID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count shift assignments: %w", err)
	}
	if live > 0 {
		return shift.ErrShiftInUse
	}

	return s.shiftRepo.Delete(ctx, id)
}

// CreateShiftType implements shift.ShiftService.
func (s *shiftServiceImpl) CreateShiftType(ctx context.Context, req shift.CreateShiftTypeRequest) (shift.ShiftTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftTypeResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return shift.ShiftTypeResponse{}, fmt.Errorf("failed to generate shift type id: %w", err)
	}

	st := shift.ShiftType{
		ID:          id.String(),
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		st.Active = *req.Active
	}

	created, err := s.shiftTypeRepo.Create(ctx, st)
	if err != nil {
		return shift.ShiftTypeResponse{}, err
	}
	return shift.NewShiftTypeResponse(created), nil
}

// GetShiftType implements shift.ShiftService.
func (s *shiftServiceImpl) GetShiftType(ctx context.Context, id string) (shift.ShiftTypeResponse, error) {
	st, err := s.shiftTypeRepo.GetByID(ctx, id)
	if err != nil {
		return shift.ShiftTypeResponse{}, err
	}
	return shift.NewShiftTypeResponse(st), nil
}

// ListShiftTypes implements shift.ShiftService.
func (s *shiftServiceImpl) ListShiftTypes(ctx context.Context) ([]shift.ShiftTypeResponse, error) {
	types, err := s.shiftTypeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift types: %w", err)
	}
	out := make([]shift.ShiftTypeResponse, 0, len(types))
	for _, st := range types {
		out = append(out, shift.NewShiftTypeResponse(st))
	}
	return out, nil
}

// UpdateShiftType implements shift.ShiftService.
func (s *shiftServiceImpl) UpdateShiftType(ctx context.Context, req shift.UpdateShiftTypeRequest) (shift.ShiftTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftTypeResponse{}, err
	}

	st, err := s.shiftTypeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return shift.ShiftTypeResponse{}, err
	}
	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Description != nil {
		st.Description = *req.Description
	}
	if req.Active != nil {
		st.Active = *req.Active
	}

	updated, err := s.shiftTypeRepo.Update(ctx, st)
	if err != nil {
		return shift.ShiftTypeResponse{}, err
	}
	return shift.NewShiftTypeResponse(updated), nil
}

// DeleteShiftType implements shift.ShiftService.
func (s *shiftServiceImpl) DeleteShiftType(ctx context.Context, id string) error {
	return s.shiftTypeRepo.Delete(ctx, id)
}
