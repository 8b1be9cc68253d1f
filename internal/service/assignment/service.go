package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type assignmentServiceImpl struct {
	tx        database.Transactor
	repo      assignment.AssignmentRepository
	shiftRepo shift.ShiftRepository
	ruleRepo  schedulerule.ScheduleRuleRepository
	calendar  calendar.Checker
	directory assignment.SubjectDirectory
	loc       *time.Location
	now       func() time.Time
}

func NewAssignmentService(
	tx database.Transactor,
	repo assignment.AssignmentRepository,
	shiftRepo shift.ShiftRepository,
	ruleRepo schedulerule.ScheduleRuleRepository,
	checker calendar.Checker,
	directory assignment.SubjectDirectory,
	loc *time.Location,
) assignment.AssignmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &assignmentServiceImpl{
		tx:        tx,
		repo:      repo,
		shiftRepo: shiftRepo,
		ruleRepo:  ruleRepo,
		calendar:  checker,
		directory: directory,
		loc:       loc,
		now:       time.Now,
	}
}

// today is the current calendar date in the company timezone.
func (s *assignmentServiceImpl) today() time.Time {
	return calendar.DateOf(s.now().In(s.loc))
}

// Create implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Create(ctx context.Context, subjectType assignment.SubjectType, req assignment.CreateAssignmentRequest) (assignment.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return assignment.AssignmentResponse{}, err
	}

	subject := assignment.Subject{Type: subjectType, ID: req.SubjectID}
	if err := s.checkSubject(ctx, subject); err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if _, err := s.shiftRepo.GetByID(ctx, req.ShiftID); err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if req.ScheduleRuleID != nil {
		if _, err := s.ruleRepo.GetByID(ctx, *req.ScheduleRuleID); err != nil {
			return assignment.AssignmentResponse{}, err
		}
	}

	start, end := req.Range()
	if err := s.checkHolidayBoundary(ctx, start, end); err != nil {
		return assignment.AssignmentResponse{}, err
	}

	status, err := assignment.Transition(assignment.StatusPending, start, end, s.today())
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return assignment.AssignmentResponse{}, fmt.Errorf("failed to generate shift assignment id: %w", err)
	}

	newAssignment := assignment.Assignment{
		ID:             id.String(),
		Subject:        subject,
		ShiftID:        req.ShiftID,
		ScheduleRuleID: req.ScheduleRuleID,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
	}

	var created assignment.Assignment
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockSubject(txCtx, subject); err != nil {
			return fmt.Errorf("failed to lock subject: %w", err)
		}

		overlapping, err := s.repo.FindOverlapping(txCtx, subject, start, end)
		if err != nil {
			return fmt.Errorf("failed to check overlapping assignments: %w", err)
		}
		if len(overlapping) > 0 {
			return assignment.ErrAssignmentConflict
		}

		created, err = s.repo.Create(txCtx, newAssignment)
		return err
	})
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}

	return assignment.NewAssignmentResponse(created), nil
}

// Get implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Get(ctx context.Context, id string) (assignment.AssignmentResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	return assignment.NewAssignmentResponse(a), nil
}

// ListBySubjectType implements assignment.AssignmentService.
func (s *assignmentServiceImpl) ListBySubjectType(ctx context.Context, subjectType assignment.SubjectType) ([]assignment.AssignmentResponse, error) {
	list, err := s.repo.ListBySubjectType(ctx, subjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	return assignment.NewAssignmentResponses(list), nil
}

// ListBySubject implements assignment.AssignmentService.
func (s *assignmentServiceImpl) ListBySubject(ctx context.Context, subject assignment.Subject) ([]assignment.AssignmentResponse, error) {
	list, err := s.repo.ListBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	return assignment.NewAssignmentResponses(list), nil
}

// UpdateBySubject implements assignment.AssignmentService.
// Every non-cancelled assignment of the subject receives the same changes and has its status recomputed.
func (s *assignmentServiceImpl) UpdateBySubject(ctx context.Context, subject assignment.Subject, req assignment.UpdateBySubjectRequest) ([]assignment.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ShiftID != nil {
		if _, err := s.shiftRepo.GetByID(ctx, *req.ShiftID); err != nil {
			return nil, err
		}
	}
	if req.ScheduleRuleID != nil && *req.ScheduleRuleID != "" {
		if _, err := s.ruleRepo.GetByID(ctx, *req.ScheduleRuleID); err != nil {
			return nil, err
		}
	}

	today := s.today()
	var updated []assignment.Assignment
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockSubject(txCtx, subject); err != nil {
			return fmt.Errorf("failed to lock subject: %w", err)
		}

		existing, err := s.repo.ListBySubject(txCtx, subject)
		if err != nil {
			return fmt.Errorf("failed to list shift assignments: %w", err)
		}

		var targets []assignment.Assignment
		var targetIDs []string
		for _, a := range existing {
			if a.Status == assignment.StatusCancelled {
				continue
			}
			targets = append(targets, a)
			targetIDs = append(targetIDs, a.ID)
		}
		if len(targets) == 0 {
			return assignment.ErrAssignmentNotFound
		}

		datesChanged := req.StartDate != nil || req.EndDate != nil
		for i := range targets {
			a := &targets[i]
			if req.ShiftID != nil {
				a.ShiftID = *req.ShiftID
			}
			if req.ScheduleRuleID != nil {
				if *req.ScheduleRuleID == "" {
					a.ScheduleRuleID = nil
				} else {
					a.ScheduleRuleID = req.ScheduleRuleID
				}
			}
			if req.StartDate != nil {
				a.StartDate = *assignment.ParseOptionalDate(req.StartDate)
			}
			if req.EndDate != nil {
				a.EndDate = assignment.ParseOptionalDate(req.EndDate)
			}

			status, err := assignment.Transition(a.Status, a.StartDate, a.EndDate, today)
			if err != nil {
				return err
			}
			a.Status = status

			if datesChanged {
				if err := s.checkHolidayBoundary(txCtx, a.StartDate, a.EndDate); err != nil {
					return err
				}
			}
		}

		if datesChanged {
			for i := range targets {
				for j := i + 1; j < len(targets); j++ {
					if targets[i].Overlaps(targets[j].StartDate, targets[j].EndDate) {
						return assignment.ErrAssignmentConflict
					}
				}
				others, err := s.repo.FindOverlapping(txCtx, subject, targets[i].StartDate, targets[i].EndDate, targetIDs...)
				if err != nil {
					return fmt.Errorf("failed to check overlapping assignments: %w", err)
				}
				if len(others) > 0 {
					return assignment.ErrAssignmentConflict
				}
			}
		}

		for _, a := range targets {
			saved, err := s.repo.Update(txCtx, a)
			if err != nil {
				return err
			}
			updated = append(updated, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment.NewAssignmentResponses(updated), nil
}

// DeleteBySubject implements assignment.AssignmentService.
func (s *assignmentServiceImpl) DeleteBySubject(ctx context.Context, subject assignment.Subject) (int, error) {
	deleted, err := s.repo.DeleteBySubject(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to delete shift assignments: %w", err)
	}
	return deleted, nil
}

// Delete implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Approve implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Approve(ctx context.Context, id string) (assignment.AssignmentResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if a.Status == assignment.StatusCancelled {
		return assignment.AssignmentResponse{}, assignment.ErrAssignmentCanceled
	}

	status, err := assignment.Transition(a.Status, a.StartDate, a.EndDate, s.today())
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if status != a.Status {
		updated, err := s.repo.UpdateStatus(ctx, a.ID, a.Status, status)
		if err != nil {
			return assignment.AssignmentResponse{}, err
		}
		if !updated {
			return assignment.AssignmentResponse{}, s.statusChanged(ctx, a.ID)
		}
		a.Status = status
	}

	return assignment.NewAssignmentResponse(a), nil
}

// statusChanged explains a conditional status write that matched nothing.
func (s *assignmentServiceImpl) statusChanged(ctx context.Context, id string) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == assignment.StatusCancelled {
		return assignment.ErrAssignmentCanceled
	}
	return assignment.ErrStatusChanged
}

// Cancel implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Cancel(ctx context.Context, id string) (assignment.AssignmentResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if !a.Status.IsLive() {
		return assignment.AssignmentResponse{}, assignment.ErrCannotCancel
	}

	updated, err := s.repo.UpdateStatus(ctx, a.ID, a.Status, assignment.StatusCancelled)
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if !updated {
		return assignment.AssignmentResponse{}, s.statusChanged(ctx, a.ID)
	}
	a.Status = assignment.StatusCancelled

	return assignment.NewAssignmentResponse(a), nil
}

// ListExpiring implements assignment.AssignmentService.
func (s *assignmentServiceImpl) ListExpiring(ctx context.Context, before time.Time) ([]assignment.ExpiringShiftResponse, error) {
	approved, err := s.repo.ListByStatus(ctx, assignment.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved shift assignments: %w", err)
	}

	today := s.today()
	shifts := make(map[string]shift.Shift)
	out := make([]assignment.ExpiringShiftResponse, 0)
	for _, a := range approved {
		sh, ok := shifts[a.ShiftID]
		if !ok {
			sh, err = s.shiftRepo.GetByID(ctx, a.ShiftID)
			if err != nil {
				return nil, fmt.Errorf("failed to load shift %s: %w", a.ShiftID, err)
			}
			shifts[a.ShiftID] = sh
		}

		endsAt := sh.EndOn(today, s.loc)
		if !endsAt.Before(before) {
			continue
		}
		out = append(out, assignment.ExpiringShiftResponse{
			AssignmentResponse: assignment.NewAssignmentResponse(a),
			ShiftName:          sh.Name,
			EndsAt:             endsAt.Format(time.RFC3339),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt < out[j].EndsAt })
	return out, nil
}

// ListExpired implements assignment.AssignmentService. It does not modify any row.
func (s *assignmentServiceImpl) ListExpired(ctx context.Context) ([]assignment.AssignmentResponse, error) {
	list, err := s.repo.ListEndedBefore(ctx, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to list expired shift assignments: %w", err)
	}
	return assignment.NewAssignmentResponses(list), nil
}

// ExpireAll implements assignment.AssignmentService.
func (s *assignmentServiceImpl) ExpireAll(ctx context.Context) (assignment.SweepSummary, error) {
	var summary assignment.SweepSummary

	candidates, err := s.repo.ListEndedBefore(ctx, s.today())
	if err != nil {
		return summary, fmt.Errorf("failed to list expired shift assignments: %w", err)
	}

	for _, a := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++

		if a.Status == assignment.StatusExpired {
			continue
		}
		updated, err := s.repo.UpdateStatus(ctx, a.ID, a.Status, assignment.StatusExpired)
		if err != nil {
			summary.Failed++
			slog.Error("failed to expire shift assignment", "assignment_id", a.ID, "error", err)
			continue
		}
		if !updated {
			summary.Skipped++
			continue
		}
		summary.Updated++
	}

	slog.Info("shift assignment expiry sweep finished",
		"processed", summary.Processed, "updated", summary.Updated, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// RecalculateAll implements assignment.AssignmentService.
func (s *assignmentServiceImpl) RecalculateAll(ctx context.Context) (assignment.SweepSummary, error) {
	var summary assignment.SweepSummary

	list, err := s.repo.ListByStatus(ctx, assignment.StatusPending, assignment.StatusApproved, assignment.StatusExpired)
	if err != nil {
		return summary, fmt.Errorf("failed to list shift assignments: %w", err)
	}

	today := s.today()
	for _, a := range list {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++

		status, err := assignment.Transition(a.Status, a.StartDate, a.EndDate, today)
		if err != nil {
			summary.Failed++
			slog.Error("failed to recompute shift assignment status", "assignment_id", a.ID, "error", err)
			continue
		}
		if status == a.Status {
			continue
		}
		updated, err := s.repo.UpdateStatus(ctx, a.ID, a.Status, status)
		if err != nil {
			summary.Failed++
			slog.Error("failed to update shift assignment status", "assignment_id", a.ID, "status", status, "error", err)
			continue
		}
		if !updated {
			summary.Skipped++
			continue
		}
		summary.Updated++
	}

	slog.Info("shift assignment status sweep finished",
		"processed", summary.Processed, "updated", summary.Updated, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// GetActiveShift implements assignment.AssignmentService.
func (s *assignmentServiceImpl) GetActiveShift(ctx context.Context, employeeID string, date time.Time) (assignment.ActiveShift, error) {
	day := calendar.DateOf(date)

	departmentID, positionID, err := s.directory.EmployeePlacement(ctx, employeeID)
	if err != nil {
		return assignment.ActiveShift{}, err
	}

	subjects := []assignment.Subject{{Type: assignment.SubjectEmployee, ID: employeeID}}
	if positionID != nil {
		subjects = append(subjects, assignment.Subject{Type: assignment.SubjectPosition, ID: *positionID})
	}
	if departmentID != nil {
		subjects = append(subjects, assignment.Subject{Type: assignment.SubjectDepartment, ID: *departmentID})
	}

	covering, err := s.repo.ListCovering(ctx, subjects, day)
	if err != nil {
		return assignment.ActiveShift{}, fmt.Errorf("failed to list covering shift assignments: %w", err)
	}
	if len(covering) == 0 {
		return assignment.ActiveShift{}, assignment.ErrNoActiveShift
	}

	sort.Slice(covering, func(i, j int) bool {
		ri, rj := specificity(covering[i].Subject.Type), specificity(covering[j].Subject.Type)
		if ri != rj {
			return ri < rj
		}
		return covering[i].StartDate.After(covering[j].StartDate)
	})
	chosen := covering[0]

	if chosen.ScheduleRuleID != nil {
		rule, err := s.ruleRepo.GetByID(ctx, *chosen.ScheduleRuleID)
		if err != nil && !errors.Is(err, schedulerule.ErrScheduleRuleNotFound) {
			return assignment.ActiveShift{}, err
		}
		if err == nil && !rule.IsWorkDay(day) {
			return assignment.ActiveShift{}, assignment.ErrNoActiveShift
		}
	}

	sh, err := s.shiftRepo.GetByID(ctx, chosen.ShiftID)
	if err != nil {
		return assignment.ActiveShift{}, err
	}

	return assignment.ActiveShift{Assignment: chosen, Shift: sh}, nil
}

func specificity(t assignment.SubjectType) int {
	switch t {
	case assignment.SubjectEmployee:
		return 0
	case assignment.SubjectPosition:
		return 1
	default:
		return 2
	}
}

func (s *assignmentServiceImpl) checkSubject(ctx context.Context, subject assignment.Subject) error {
	switch subject.Type {
	case assignment.SubjectEmployee, assignment.SubjectDepartment, assignment.SubjectPosition:
	default:
		return assignment.ErrInvalidSubjectType
	}

	exists, err := s.directory.Exists(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to look up subject: %w", err)
	}
	if !exists {
		return assignment.ErrSubjectNotFound
	}
	return nil
}

// checkHolidayBoundary rejects ranges that start or end on a holiday.
func (s *assignmentServiceImpl) checkHolidayBoundary(ctx context.Context, start time.Time, end *time.Time) error {
	holiday, err := s.calendar.IsHoliday(ctx, start)
	if err != nil {
		return err
	}
	if holiday {
		return assignment.ErrHolidayBoundary
	}
	if end == nil {
		return nil
	}
	holiday, err = s.calendar.IsHoliday(ctx, *end)
	if err != nil {
		return err
	}
	if holiday {
		return assignment.ErrHolidayBoundary
	}
	return nil
}
