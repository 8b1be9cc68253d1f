package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type Options struct {
	RoundingMinutes int
	Location        *time.Location
}

type attendanceServiceImpl struct {
	tx              database.Transactor
	recordRepo      attendance.RecordRepository
	reviews         attendance.ReviewCounter
	shifts          assignment.ShiftResolver
	latenessService lateness.LatenessService
	overtimeService overtime.OvertimeService
	grid            time.Duration
	loc             *time.Location
	now             func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	recordRepo attendance.RecordRepository,
	reviews attendance.ReviewCounter,
	shifts assignment.ShiftResolver,
	latenessService lateness.LatenessService,
	overtimeService overtime.OvertimeService,
	opts Options,
) attendance.AttendanceService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &attendanceServiceImpl{
		tx:              tx,
		recordRepo:      recordRepo,
		reviews:         reviews,
		shifts:          shifts,
		latenessService: latenessService,
		overtimeService: overtimeService,
		grid:            time.Duration(opts.RoundingMinutes) * time.Minute,
		loc:             opts.Location,
		now:             time.Now,
	}
}

// Create implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Create(ctx context.Context, req attendance.CreateRecordRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to generate attendance record id: %w", err)
	}

	workDate, _ := validator.IsValidDate(req.WorkDate)
	record := attendance.Record{
		ID:           id.String(),
		EmployeeID:   req.EmployeeID,
		WorkDate:     workDate,
		Punches:      attendance.ToPunches(req.Punches),
		ExceptionIDs: req.ExceptionIDs,
		Version:      1,
	}
	if err := s.derive(ctx, &record, true); err != nil {
		return attendance.RecordResponse{}, err
	}

	created, err := s.recordRepo.Create(ctx, record)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(created), nil
}

// Get implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Get(ctx context.Context, id string) (attendance.RecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(record), nil
}

// List implements attendance.AttendanceService.
func (s *attendanceServiceImpl) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.RecordResponse, error) {
	records, err := s.recordRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	out := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.NewRecordResponse(r))
	}
	return out, nil
}

// Update implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Update(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	record, err := s.recordRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if record.FinalizedForPayroll {
		return attendance.RecordResponse{}, attendance.ErrRecordFinalized
	}
	if record.Version != req.ExpectedVersion {
		return attendance.RecordResponse{}, attendance.ErrVersionConflict
	}

	if req.Punches != nil {
		record.Punches = attendance.ToPunches(req.Punches)
	}
	if req.ExceptionIDs != nil {
		record.ExceptionIDs = req.ExceptionIDs
	}
	if err := s.derive(ctx, &record, req.Punches != nil); err != nil {
		return attendance.RecordResponse{}, err
	}

	updated, err := s.recordRepo.Update(ctx, record, req.ExpectedVersion)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(updated), nil
}

// Delete implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Delete(ctx context.Context, id string) error {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.FinalizedForPayroll {
		return attendance.ErrRecordFinalized
	}
	return s.recordRepo.Delete(ctx, id)
}

// Finalize implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Finalize(ctx context.Context, id string, expectedVersion int) (attendance.RecordResponse, error) {
	var finalized attendance.Record
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		record, err := s.recordRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if record.FinalizedForPayroll {
			return attendance.ErrRecordFinalized
		}
		if record.Version != expectedVersion {
			return attendance.ErrVersionConflict
		}
		if record.HasMissedPunch {
			return attendance.ErrMissedPunch
		}

		open, err := s.reviews.CountInReviewByRecord(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count correction requests: %w", err)
		}
		if open > 0 {
			return attendance.ErrCorrectionInReview
		}

		now := s.now()
		record.FinalizedForPayroll = true
		record.FinalizedAt = &now

		finalized, err = s.recordRepo.Update(txCtx, record, expectedVersion)
		return err
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(finalized), nil
}

// ApplyPunches implements attendance.AttendanceService.
func (s *attendanceServiceImpl) ApplyPunches(ctx context.Context, id string, punches []attendance.Punch) (attendance.Record, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.Record{}, err
	}
	if record.FinalizedForPayroll {
		return attendance.Record{}, attendance.ErrRecordFinalized
	}

	record.Punches = punches
	if err := s.derive(ctx, &record, true); err != nil {
		return attendance.Record{}, err
	}
	return s.recordRepo.Update(ctx, record, record.Version)
}

// Overtime implements attendance.AttendanceService.
func (s *attendanceServiceImpl) Overtime(ctx context.Context, id string, ruleID string) (overtime.Result, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return overtime.Result{}, err
	}

	hours := decimal.NewFromInt(int64(record.TotalWorkMinutes)).Div(decimal.NewFromInt(60))
	return s.overtimeService.Evaluate(ctx, ruleID, record.WorkDate, hours)
}

// derive normalizes the record's punches and recomputes every field that depends on them.
// With raw set the punches are as submitted and FirstInAt is taken from them before rounding;
// otherwise they are the stored, already rounded punches and the stored FirstInAt is kept.
func (s *attendanceServiceImpl) derive(ctx context.Context, record *attendance.Record, raw bool) error {
	local := make([]attendance.Punch, 0, len(record.Punches))
	for _, p := range record.Punches {
		local = append(local, attendance.Punch{Type: p.Type, Time: p.Time.In(s.loc)})
	}
	if raw {
		record.FirstInAt = nil
		if firstIn, ok := EarliestIn(local); ok {
			record.FirstInAt = &firstIn
		}
	}
	record.Punches = Normalize(local, s.grid)

	missed, reason := DetectMissed(record.Punches)
	record.HasMissedPunch = missed
	record.MissedPunchReason = nil
	if missed {
		record.MissedPunchReason = &reason
	}

	record.ShiftID = nil
	record.LateMinutes = 0
	record.LatenessDeduction = decimal.Zero
	policy := shift.PunchPolicyMultiple

	active, err := s.shifts.GetActiveShift(ctx, record.EmployeeID, calendar.DateOf(record.WorkDate))
	switch {
	case errors.Is(err, assignment.ErrNoActiveShift):
	case err != nil:
		return fmt.Errorf("failed to resolve shift of record: %w", err)
	default:
		shiftID := active.Shift.ID
		record.ShiftID = &shiftID
		policy = active.Shift.PunchPolicy

		firstIn, ok := record.FirstIn()
		if record.FirstInAt != nil {
			firstIn, ok = *record.FirstInAt, true
		}
		if ok {
			result, err := s.latenessService.Evaluate(ctx, active.Shift, record.WorkDate, firstIn)
			if err != nil {
				return err
			}
			record.LateMinutes = result.LateMinutes
			record.LatenessDeduction = result.Deduction
		}
	}

	record.TotalWorkMinutes = WorkedMinutes(record.Punches, policy)
	return nil
}
