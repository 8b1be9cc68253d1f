package correction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
)

type noShifts struct{}

func (noShifts) GetActiveShift(context.Context, string, time.Time) (assignment.ActiveShift, error) {
	return assignment.ActiveShift{}, assignment.ErrNoActiveShift
}

type sentEvent struct {
	topic string
	name  string
}

type recordingNotifier struct {
	events []sentEvent
}

func (n *recordingNotifier) Notify(topic, event string, _ any) {
	n.events = append(n.events, sentEvent{topic: topic, name: event})
}

type correctionFixture struct {
	svc        *correctionServiceImpl
	events     *recordingNotifier
	attendance attendance.AttendanceService
	today      time.Time
}

func newCorrectionFixture(t *testing.T) *correctionFixture {
	t.Helper()

	store := memory.NewStore()
	tx := memory.NewTransactor()
	recordRepo := memory.NewRecordRepository(store)
	requestRepo := memory.NewCorrectionRepository(store)

	attendanceService := attendancesvc.NewAttendanceService(tx, recordRepo, requestRepo, noShifts{}, nil, nil,
		attendancesvc.Options{RoundingMinutes: 5, Location: time.UTC})

	f := &correctionFixture{
		attendance: attendanceService,
		events:     &recordingNotifier{},
		today:      date("2024-03-10"),
	}
	svc := NewCorrectionService(tx, requestRepo, recordRepo, attendanceService, Options{
		PayrollCutoffDay: 25,
		LeadDays:         3,
		Location:         time.UTC,
		Notifier:         f.events,
	})
	f.svc = svc.(*correctionServiceImpl)
	f.svc.now = func() time.Time { return f.today.Add(8 * time.Hour) }
	return f
}

func date(s string) time.Time {
	d, ok := validator.IsValidDate(s)
	if !ok {
		panic("bad date " + s)
	}
	return d
}

func (f *correctionFixture) record(t *testing.T, employeeID, workDate string) attendance.RecordResponse {
	t.Helper()
	rec, err := f.attendance.Create(context.Background(), attendance.CreateRecordRequest{
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Punches: []attendance.PunchRequest{
			{Type: "IN", Time: workDate + "T09:00:00Z"},
		},
	})
	require.NoError(t, err)
	return rec
}

func (f *correctionFixture) submit(t *testing.T, employeeID string, rec attendance.RecordResponse) correction.RequestResponse {
	t.Helper()
	req, err := f.svc.Submit(context.Background(), employeeID, correction.SubmitRequest{
		AttendanceRecordID: rec.ID,
		Reason:             "forgot to punch out",
		ProposedPunches: []attendance.PunchRequest{
			{Type: "IN", Time: rec.WorkDate + "T09:00:00Z"},
			{Type: "OUT", Time: rec.WorkDate + "T17:00:00Z"},
		},
	})
	require.NoError(t, err)
	return req
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	rec := f.record(t, "E1", "2024-03-08")

	req := f.submit(t, "E1", rec)
	assert.Equal(t, string(correction.StatusInReview), req.Status)
	assert.Equal(t, 1, req.Version)

	_, err := f.svc.Submit(ctx, "E2", correction.SubmitRequest{AttendanceRecordID: rec.ID, Reason: "not mine"})
	assert.ErrorIs(t, err, correction.ErrForeignRecord)

	_, err = f.svc.Submit(ctx, "", correction.SubmitRequest{AttendanceRecordID: rec.ID, Reason: "x"})
	assert.ErrorIs(t, err, correction.ErrMissingEmployee)
}

func TestApprove_AppliesProposedPunches(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	rec := f.record(t, "E1", "2024-03-08")
	require.True(t, rec.HasMissedPunch)

	req := f.submit(t, "E1", rec)

	approved, err := f.svc.Approve(ctx, correction.ReviewRequest{ID: req.ID, ReviewerID: "U-HR", ExpectedVersion: req.Version})
	require.NoError(t, err)
	assert.Equal(t, string(correction.StatusApproved), approved.Status)
	require.NotNil(t, approved.ReviewerID)
	assert.Equal(t, "U-HR", *approved.ReviewerID)
	assert.NotNil(t, approved.ReviewedAt)

	updated, err := f.attendance.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, updated.HasMissedPunch)
	assert.Equal(t, 480, updated.TotalWorkMinutes)
	assert.Equal(t, rec.Version+1, updated.Version)

	_, err = f.svc.Approve(ctx, correction.ReviewRequest{ID: req.ID, ReviewerID: "U-HR", ExpectedVersion: approved.Version})
	assert.ErrorIs(t, err, correction.ErrNotInReview)

	_, err = f.svc.Reject(ctx, correction.ReviewRequest{ID: req.ID, ReviewerID: "U-HR", ExpectedVersion: approved.Version})
	assert.ErrorIs(t, err, correction.ErrNotInReview)

	err = f.svc.Withdraw(ctx, correction.WithdrawRequest{ID: req.ID, EmployeeID: "E1", ExpectedVersion: approved.Version})
	assert.ErrorIs(t, err, correction.ErrNotInReview)
}

func TestReject_LeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	rec := f.record(t, "E1", "2024-03-08")
	req := f.submit(t, "E1", rec)

	_, err := f.svc.Reject(ctx, correction.ReviewRequest{ID: req.ID, ReviewerID: "U-HR", ExpectedVersion: req.Version + 1})
	assert.ErrorIs(t, err, correction.ErrVersionConflict)

	rejected, err := f.svc.Reject(ctx, correction.ReviewRequest{ID: req.ID, ReviewerID: "U-HR", ExpectedVersion: req.Version})
	require.NoError(t, err)
	assert.Equal(t, string(correction.StatusRejected), rejected.Status)

	after, err := f.attendance.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Version, after.Version)
	assert.True(t, after.HasMissedPunch)
}

func TestUpdateAndWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	rec := f.record(t, "E1", "2024-03-08")
	req := f.submit(t, "E1", rec)

	reason := "clock was broken"
	_, err := f.svc.Update(ctx, correction.UpdateRequest{ID: req.ID, EmployeeID: "E2", Reason: &reason, ExpectedVersion: req.Version})
	assert.ErrorIs(t, err, correction.ErrNotSubmitter)

	updated, err := f.svc.Update(ctx, correction.UpdateRequest{ID: req.ID, EmployeeID: "E1", Reason: &reason, ExpectedVersion: req.Version})
	require.NoError(t, err)
	assert.Equal(t, reason, updated.Reason)
	assert.Equal(t, 2, updated.Version)

	err = f.svc.Withdraw(ctx, correction.WithdrawRequest{ID: req.ID, EmployeeID: "E2", ExpectedVersion: updated.Version})
	assert.ErrorIs(t, err, correction.ErrNotSubmitter)

	err = f.svc.Withdraw(ctx, correction.WithdrawRequest{ID: req.ID, EmployeeID: "E1"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "expected_version")

	err = f.svc.Withdraw(ctx, correction.WithdrawRequest{ID: req.ID, EmployeeID: "E1", ExpectedVersion: req.Version})
	assert.ErrorIs(t, err, correction.ErrVersionConflict, "withdrawing a stale copy is refused")

	err = f.svc.Withdraw(ctx, correction.WithdrawRequest{ID: req.ID, EmployeeID: "E2", AsReviewer: true, ExpectedVersion: updated.Version})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, req.ID)
	assert.ErrorIs(t, err, correction.ErrRequestNotFound)
}

// approvingRepository decides every IN_REVIEW request right after handing out a copy of it,
// standing in for a reviewer whose approval commits between a read and the following write.
type approvingRepository struct {
	correction.RequestRepository
}

func (r approvingRepository) GetByID(ctx context.Context, id string) (correction.Request, error) {
	req, err := r.RequestRepository.GetByID(ctx, id)
	if err != nil || req.Status != correction.StatusInReview {
		return req, err
	}
	decided := req
	decided.Status = correction.StatusApproved
	if _, err := r.RequestRepository.Update(ctx, decided, req.Version); err != nil {
		return correction.Request{}, err
	}
	return req, nil
}

func TestWithdraw_DoesNotDeleteConcurrentDecision(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	req := f.submit(t, "E1", f.record(t, "E1", "2024-03-08"))

	inner := f.svc.requestRepo
	f.svc.requestRepo = approvingRepository{RequestRepository: inner}

	err := f.svc.Withdraw(ctx, correction.WithdrawRequest{ID: req.ID, EmployeeID: "E1", ExpectedVersion: req.Version})
	assert.ErrorIs(t, err, correction.ErrNotInReview)

	kept, err := inner.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, correction.StatusApproved, kept.Status)
}

func TestEscalatePending(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	early := f.submit(t, "E1", f.record(t, "E1", "2024-03-08"))
	late := f.submit(t, "E1", f.record(t, "E1", "2024-03-27"))

	// Fifteen days before the cutoff nothing is due.
	result, err := f.svc.EscalatePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-25", result.Cutoff)
	assert.Zero(t, result.Count)

	f.today = date("2024-03-23")
	result, err = f.svc.EscalatePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, []string{early.ID}, result.IDs)

	got, err := f.svc.Get(ctx, early.ID)
	require.NoError(t, err)
	assert.True(t, got.Escalated)
	assert.NotNil(t, got.EscalatedAt)

	other, err := f.svc.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.False(t, other.Escalated, "work date after the cutoff belongs to the next period")

	result, err = f.svc.EscalatePending(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Count, "escalation is idempotent")
}

type failingEscalationRepository struct {
	correction.RequestRepository
	failID string
}

func (r failingEscalationRepository) MarkEscalated(ctx context.Context, id string, at time.Time) (bool, error) {
	if id == r.failID {
		return false, errors.New("connection reset")
	}
	return r.RequestRepository.MarkEscalated(ctx, id, at)
}

func TestEscalatePending_CountsFailedWrites(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)
	broken := f.submit(t, "E1", f.record(t, "E1", "2024-03-07"))
	ok := f.submit(t, "E2", f.record(t, "E2", "2024-03-08"))

	f.svc.requestRepo = failingEscalationRepository{RequestRepository: f.svc.requestRepo, failID: broken.ID}
	f.today = date("2024-03-23")

	result, err := f.svc.EscalatePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{ok.ID}, result.IDs)

	got, err := f.svc.Get(ctx, broken.ID)
	require.NoError(t, err)
	assert.False(t, got.Escalated)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	f := newCorrectionFixture(t)

	first := f.submit(t, "E1", f.record(t, "E1", "2024-03-07"))
	second := f.submit(t, "E2", f.record(t, "E2", "2024-03-08"))

	_, err := f.svc.Reject(ctx, correction.ReviewRequest{ID: first.ID, ReviewerID: "U-HR", ExpectedVersion: first.Version})
	require.NoError(t, err)

	// Failed decisions publish nothing.
	_, err = f.svc.Approve(ctx, correction.ReviewRequest{ID: first.ID, ReviewerID: "U-HR", ExpectedVersion: first.Version})
	require.ErrorIs(t, err, correction.ErrNotInReview)

	f.today = date("2024-03-24")
	_, err = f.svc.EscalatePending(ctx)
	require.NoError(t, err)

	assert.Equal(t, []sentEvent{
		{topic: correction.ReviewersTopic, name: correction.EventSubmitted},
		{topic: correction.ReviewersTopic, name: correction.EventSubmitted},
		{topic: "E1", name: correction.EventRejected},
		{topic: second.EmployeeID, name: correction.EventEscalated},
		{topic: correction.ReviewersTopic, name: correction.EventEscalated},
	}, f.events.events)
}

func TestNextPayrollCutoff(t *testing.T) {
	cases := []struct {
		today string
		want  string
	}{
		{"2024-03-10", "2024-03-25"},
		{"2024-03-25", "2024-03-25"},
		{"2024-03-26", "2024-04-25"},
		{"2024-12-31", "2025-01-25"},
	}
	for _, tc := range cases {
		t.Run(tc.today, func(t *testing.T) {
			assert.Equal(t, tc.want, NextPayrollCutoff(date(tc.today), 25).Format(validator.DateLayout))
		})
	}
}
