package correction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type Options struct {
	PayrollCutoffDay int
	LeadDays         int
	Location         *time.Location
	// Notifier receives review events. Nil disables publishing.
	Notifier correction.Notifier
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, any) {}

type correctionServiceImpl struct {
	tx                database.Transactor
	requestRepo       correction.RequestRepository
	recordRepo        attendance.RecordRepository
	attendanceService attendance.AttendanceService
	cutoffDay         int
	leadDays          int
	loc               *time.Location
	notifier          correction.Notifier
	now               func() time.Time
}

func NewCorrectionService(
	tx database.Transactor,
	requestRepo correction.RequestRepository,
	recordRepo attendance.RecordRepository,
	attendanceService attendance.AttendanceService,
	opts Options,
) correction.CorrectionService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	return &correctionServiceImpl{
		tx:                tx,
		requestRepo:       requestRepo,
		recordRepo:        recordRepo,
		attendanceService: attendanceService,
		cutoffDay:         opts.PayrollCutoffDay,
		leadDays:          opts.LeadDays,
		loc:               opts.Location,
		notifier:          opts.Notifier,
		now:               time.Now,
	}
}

// Create implements correction.CorrectionService.
func (s *correctionServiceImpl) Create(ctx context.Context, req correction.CreateRequest) (correction.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.RequestResponse{}, err
	}
	return s.open(ctx, req.EmployeeID, req.SubmitRequest)
}

// Submit implements correction.CorrectionService.
func (s *correctionServiceImpl) Submit(ctx context.Context, employeeID string, req correction.SubmitRequest) (correction.RequestResponse, error) {
	if validator.IsEmpty(employeeID) {
		return correction.RequestResponse{}, correction.ErrMissingEmployee
	}
	if err := req.Validate(); err != nil {
		return correction.RequestResponse{}, err
	}
	return s.open(ctx, employeeID, req)
}

func (s *correctionServiceImpl) open(ctx context.Context, employeeID string, req correction.SubmitRequest) (correction.RequestResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, req.AttendanceRecordID)
	if err != nil {
		return correction.RequestResponse{}, err
	}
	if record.EmployeeID != employeeID {
		return correction.RequestResponse{}, correction.ErrForeignRecord
	}
	if record.FinalizedForPayroll {
		return correction.RequestResponse{}, attendance.ErrRecordFinalized
	}

	id, err := uuid.NewV7()
	if err != nil {
		return correction.RequestResponse{}, fmt.Errorf("failed to generate correction request id: %w", err)
	}

	request := correction.Request{
		ID:                 id.String(),
		EmployeeID:         employeeID,
		AttendanceRecordID: record.ID,
		Reason:             req.Reason,
		Status:             correction.StatusInReview,
		Version:            1,
	}
	if req.ProposedPunches != nil {
		request.ProposedPunches = attendance.ToPunches(req.ProposedPunches)
	}

	created, err := s.requestRepo.Create(ctx, request)
	if err != nil {
		return correction.RequestResponse{}, err
	}

	resp := correction.NewRequestResponse(created)
	s.notifier.Notify(correction.ReviewersTopic, correction.EventSubmitted, resp)
	return resp, nil
}

// Get implements correction.CorrectionService.
func (s *correctionServiceImpl) Get(ctx context.Context, id string) (correction.RequestResponse, error) {
	r, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return correction.RequestResponse{}, err
	}
	return correction.NewRequestResponse(r), nil
}

// List implements correction.CorrectionService.
func (s *correctionServiceImpl) List(ctx context.Context, filter correction.RequestFilter) ([]correction.RequestResponse, error) {
	list, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	out := make([]correction.RequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, correction.NewRequestResponse(r))
	}
	return out, nil
}

// Update implements correction.CorrectionService.
func (s *correctionServiceImpl) Update(ctx context.Context, req correction.UpdateRequest) (correction.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.RequestResponse{}, err
	}

	r, err := s.requestRepo.GetByID(ctx, req.ID)
	if err != nil {
		return correction.RequestResponse{}, err
	}
	if r.Status != correction.StatusInReview {
		return correction.RequestResponse{}, correction.ErrNotInReview
	}
	if req.EmployeeID != "" && req.EmployeeID != r.EmployeeID {
		return correction.RequestResponse{}, correction.ErrNotSubmitter
	}
	if r.Version != req.ExpectedVersion {
		return correction.RequestResponse{}, correction.ErrVersionConflict
	}

	if req.Reason != nil {
		r.Reason = *req.Reason
	}
	if req.ProposedPunches != nil {
		r.ProposedPunches = attendance.ToPunches(req.ProposedPunches)
	}

	updated, err := s.requestRepo.Update(ctx, r, req.ExpectedVersion)
	if err != nil {
		return correction.RequestResponse{}, err
	}
	return correction.NewRequestResponse(updated), nil
}

// Approve implements correction.CorrectionService.
// Proposed punches are applied to the attendance record in the same transaction as the decision.
func (s *correctionServiceImpl) Approve(ctx context.Context, req correction.ReviewRequest) (correction.RequestResponse, error) {
	return s.decide(ctx, req, correction.StatusApproved)
}

// Reject implements correction.CorrectionService.
func (s *correctionServiceImpl) Reject(ctx context.Context, req correction.ReviewRequest) (correction.RequestResponse, error) {
	return s.decide(ctx, req, correction.StatusRejected)
}

func (s *correctionServiceImpl) decide(ctx context.Context, req correction.ReviewRequest, status correction.Status) (correction.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.RequestResponse{}, err
	}

	var decided correction.Request
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.requestRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if r.Status != correction.StatusInReview {
			return correction.ErrNotInReview
		}
		if r.Version != req.ExpectedVersion {
			return correction.ErrVersionConflict
		}

		if status == correction.StatusApproved && r.ProposedPunches != nil {
			if _, err := s.attendanceService.ApplyPunches(txCtx, r.AttendanceRecordID, r.ProposedPunches); err != nil {
				return err
			}
		}

		now := s.now()
		reviewerID := req.ReviewerID
		r.Status = status
		r.ReviewerID = &reviewerID
		r.ReviewNote = req.Note
		r.ReviewedAt = &now

		decided, err = s.requestRepo.Update(txCtx, r, req.ExpectedVersion)
		return err
	})
	if err != nil {
		return correction.RequestResponse{}, err
	}

	event := correction.EventRejected
	if status == correction.StatusApproved {
		event = correction.EventApproved
	}
	resp := correction.NewRequestResponse(decided)
	s.notifier.Notify(decided.EmployeeID, event, resp)
	return resp, nil
}

// Withdraw implements correction.CorrectionService.
func (s *correctionServiceImpl) Withdraw(ctx context.Context, req correction.WithdrawRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	r, err := s.requestRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if r.Status != correction.StatusInReview {
		return correction.ErrNotInReview
	}
	if !req.AsReviewer && r.EmployeeID != req.EmployeeID {
		return correction.ErrNotSubmitter
	}
	if r.Version != req.ExpectedVersion {
		return correction.ErrVersionConflict
	}
	return s.requestRepo.Delete(ctx, r.ID, req.ExpectedVersion)
}

// EscalatePending implements correction.CorrectionService.
func (s *correctionServiceImpl) EscalatePending(ctx context.Context) (correction.EscalationResult, error) {
	now := s.now()
	today := calendar.DateOf(now.In(s.loc))
	cutoff := NextPayrollCutoff(today, s.cutoffDay)

	result := correction.EscalationResult{
		Cutoff: cutoff.Format(validator.DateLayout),
		IDs:    []string{},
	}

	daysLeft := int(cutoff.Sub(today).Hours() / 24)
	if daysLeft > s.leadDays {
		return result, nil
	}

	candidates, err := s.requestRepo.ListEscalationCandidates(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to list escalation candidates: %w", err)
	}

	for _, r := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		marked, err := s.requestRepo.MarkEscalated(ctx, r.ID, now)
		if err != nil {
			slog.Error("failed to escalate correction request", "request_id", r.ID, "error", err)
			result.Failed++
			continue
		}
		if marked {
			result.IDs = append(result.IDs, r.ID)
			s.notifier.Notify(r.EmployeeID, correction.EventEscalated, map[string]string{"id": r.ID, "cutoff": result.Cutoff})
		}
	}
	result.Count = len(result.IDs)

	if result.Count > 0 {
		s.notifier.Notify(correction.ReviewersTopic, correction.EventEscalated, result)
	}
	if result.Count > 0 || result.Failed > 0 {
		slog.Info("escalated pending correction requests", "count", result.Count, "failed", result.Failed, "cutoff", result.Cutoff)
	}
	return result, nil
}

// NextPayrollCutoff returns the cutoff date on or after today for a monthly cutoff on day.
func NextPayrollCutoff(today time.Time, day int) time.Time {
	y, m, _ := today.Date()
	cutoff := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	if today.After(cutoff) {
		cutoff = time.Date(y, m+1, day, 0, 0, 0, 0, time.UTC)
	}
	return cutoff
}
