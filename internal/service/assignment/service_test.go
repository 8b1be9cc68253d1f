package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	calendarsvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/calendar"
)

type fixture struct {
	svc       *assignmentServiceImpl
	shifts    shift.ShiftRepository
	holidays  calendar.HolidayRepository
	rules     schedulerule.ScheduleRuleRepository
	directory *memory.SubjectDirectory
	today     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		shifts:    memory.NewShiftRepository(store),
		holidays:  memory.NewHolidayRepository(store),
		rules:     memory.NewScheduleRuleRepository(store),
		directory: memory.NewSubjectDirectory(),
		today:     mustDate("2024-01-10"),
	}

	svc := NewAssignmentService(
		memory.NewTransactor(),
		memory.NewAssignmentRepository(store),
		f.shifts,
		f.rules,
		calendarsvc.NewCalendarService(f.holidays),
		f.directory,
		time.UTC,
	)
	f.svc = svc.(*assignmentServiceImpl)
	f.svc.now = func() time.Time { return f.today.Add(9 * time.Hour) }
	return f
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func mustDate(s string) time.Time {
	d, ok := validator.IsValidDate(s)
	if !ok {
		panic("bad date " + s)
	}
	return d
}

func strPtr(s string) *string { return &s }

func (f *fixture) addShift(t *testing.T, name string) string {
	t.Helper()
	sh, err := f.shifts.Create(context.Background(), shift.Shift{
		ID:          newID(),
		Name:        name,
		Start:       9 * 60,
		End:         17 * 60,
		PunchPolicy: shift.PunchPolicyMultiple,
		Active:      true,
	})
	require.NoError(t, err)
	return sh.ID
}

func (f *fixture) addHoliday(t *testing.T, date string) {
	t.Helper()
	_, err := f.holidays.Create(context.Background(), calendar.Holiday{
		ID:        newID(),
		Name:      "Holiday " + date,
		Type:      calendar.HolidayTypeNational,
		StartDate: mustDate(date),
		Active:    true,
	})
	require.NoError(t, err)
}

func (f *fixture) assign(subjectType assignment.SubjectType, subjectID, shiftID, start string, end *string) (assignment.AssignmentResponse, error) {
	return f.svc.Create(context.Background(), subjectType, assignment.CreateAssignmentRequest{
		SubjectID: subjectID,
		ShiftID:   shiftID,
		StartDate: start,
		EndDate:   end,
	})
}

func TestCreate_RejectsOverlapForSameSubject(t *testing.T) {
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	first, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-01", strPtr("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusApproved), first.Status)

	_, err = f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-15", strPtr("2024-02-15"))
	assert.ErrorIs(t, err, assignment.ErrAssignmentConflict)

	next, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-02-01", strPtr("2024-02-28"))
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusPending), next.Status)

	other, err := f.assign(assignment.SubjectEmployee, "E2", shiftID, "2024-01-15", strPtr("2024-02-15"))
	require.NoError(t, err)
	assert.Equal(t, "E2", other.SubjectID)
}

func TestCreate_OpenEndedRangeBlocksLaterRanges(t *testing.T) {
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	_, err := f.assign(assignment.SubjectDepartment, "D1", shiftID, "2024-01-01", nil)
	require.NoError(t, err)

	_, err = f.assign(assignment.SubjectDepartment, "D1", shiftID, "2025-03-01", strPtr("2025-03-05"))
	assert.ErrorIs(t, err, assignment.ErrAssignmentConflict)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	var verrs validator.ValidationErrors

	_, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-05", strPtr("2024-01-05"))
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "end_date")

	_, err = f.assign(assignment.SubjectEmployee, "E1", "not-a-uuid", "2024-01-05", nil)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "shift_id")

	_, err = f.assign(assignment.SubjectEmployee, "E1", newID(), "2024-01-05", nil)
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestCreate_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")
	f.directory.AddEmployee("E1", "D1", "")

	_, err := f.assign(assignment.SubjectEmployee, "E404", shiftID, "2024-01-01", nil)
	assert.ErrorIs(t, err, assignment.ErrSubjectNotFound)

	_, err = f.assign(assignment.SubjectType("TEAM"), "E1", shiftID, "2024-01-01", nil)
	assert.ErrorIs(t, err, assignment.ErrInvalidSubjectType)
}

func TestCreate_HolidayBoundary(t *testing.T) {
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")
	f.addHoliday(t, "2024-01-20")

	_, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-20", strPtr("2024-01-25"))
	assert.ErrorIs(t, err, assignment.ErrHolidayBoundary)

	_, err = f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-15", strPtr("2024-01-20"))
	assert.ErrorIs(t, err, assignment.ErrHolidayBoundary)

	_, err = f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-18", strPtr("2024-01-22"))
	assert.NoError(t, err)
}

func TestCancelAndApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	created, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-02-01", strPtr("2024-02-28"))
	require.NoError(t, err)
	require.Equal(t, string(assignment.StatusPending), created.Status)

	cancelled, err := f.svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusCancelled), cancelled.Status)

	_, err = f.svc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, assignment.ErrCannotCancel)

	_, err = f.svc.Approve(ctx, created.ID)
	assert.ErrorIs(t, err, assignment.ErrAssignmentCanceled)

	// A cancelled assignment no longer occupies its range.
	_, err = f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-02-10", strPtr("2024-02-20"))
	assert.NoError(t, err)

	_, err = f.svc.Approve(ctx, newID())
	assert.ErrorIs(t, err, assignment.ErrAssignmentNotFound)
}

func TestApprove_RecomputesStatusFromDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	created, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-12", strPtr("2024-01-31"))
	require.NoError(t, err)
	require.Equal(t, string(assignment.StatusPending), created.Status)

	still, err := f.svc.Approve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusPending), still.Status)

	f.today = mustDate("2024-01-12")
	approved, err := f.svc.Approve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusApproved), approved.Status)
}

func TestUpdateBySubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	morning := f.addShift(t, "Morning")
	night := f.addShift(t, "Night")
	subject := assignment.Subject{Type: assignment.SubjectEmployee, ID: "E1"}

	_, err := f.assign(subject.Type, subject.ID, morning, "2024-01-01", strPtr("2024-01-31"))
	require.NoError(t, err)
	_, err = f.assign(subject.Type, subject.ID, morning, "2024-02-01", strPtr("2024-02-28"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateBySubject(ctx, subject, assignment.UpdateBySubjectRequest{ShiftID: &night})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, a := range updated {
		assert.Equal(t, night, a.ShiftID)
	}

	// Giving both assignments the same start date makes them collide.
	_, err = f.svc.UpdateBySubject(ctx, subject, assignment.UpdateBySubjectRequest{StartDate: strPtr("2024-01-05")})
	assert.ErrorIs(t, err, assignment.ErrAssignmentConflict)

	_, err = f.svc.UpdateBySubject(ctx, assignment.Subject{Type: assignment.SubjectEmployee, ID: "E9"}, assignment.UpdateBySubjectRequest{ShiftID: &night})
	assert.ErrorIs(t, err, assignment.ErrAssignmentNotFound)
}

func TestDeleteBySubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	_, err := f.assign(assignment.SubjectPosition, "P1", shiftID, "2024-01-01", strPtr("2024-01-31"))
	require.NoError(t, err)
	_, err = f.assign(assignment.SubjectPosition, "P1", shiftID, "2024-02-01", nil)
	require.NoError(t, err)
	_, err = f.assign(assignment.SubjectPosition, "P2", shiftID, "2024-02-01", nil)
	require.NoError(t, err)

	deleted, err := f.svc.DeleteBySubject(ctx, assignment.Subject{Type: assignment.SubjectPosition, ID: "P1"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := f.svc.ListBySubjectType(ctx, assignment.SubjectPosition)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "P2", remaining[0].SubjectID)
}

func TestGetActiveShift_PrefersMostSpecificSubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.directory.AddEmployee("E1", "D1", "P1")
	deptShift := f.addShift(t, "Department")
	posShift := f.addShift(t, "Position")
	ownShift := f.addShift(t, "Own")
	day := mustDate("2024-01-15")

	_, err := f.svc.GetActiveShift(ctx, "E1", day)
	assert.ErrorIs(t, err, assignment.ErrNoActiveShift)

	_, err = f.assign(assignment.SubjectDepartment, "D1", deptShift, "2024-01-01", strPtr("2024-01-31"))
	require.NoError(t, err)
	active, err := f.svc.GetActiveShift(ctx, "E1", day)
	require.NoError(t, err)
	assert.Equal(t, deptShift, active.Shift.ID)

	_, err = f.assign(assignment.SubjectPosition, "P1", posShift, "2024-01-01", strPtr("2024-01-31"))
	require.NoError(t, err)
	active, err = f.svc.GetActiveShift(ctx, "E1", day)
	require.NoError(t, err)
	assert.Equal(t, posShift, active.Shift.ID)

	_, err = f.assign(assignment.SubjectEmployee, "E1", ownShift, "2024-01-14", strPtr("2024-01-16"))
	require.NoError(t, err)
	active, err = f.svc.GetActiveShift(ctx, "E1", day)
	require.NoError(t, err)
	assert.Equal(t, ownShift, active.Shift.ID)
	assert.Equal(t, assignment.SubjectEmployee, active.Assignment.Subject.Type)

	active, err = f.svc.GetActiveShift(ctx, "E1", mustDate("2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, posShift, active.Shift.ID)
}

func TestGetActiveShift_HonoursScheduleRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Weekdays")

	rule, err := f.rules.Create(ctx, schedulerule.ScheduleRule{
		ID:       newID(),
		Name:     "Mon-Fri",
		WorkDays: []int{1, 2, 3, 4, 5},
		Active:   true,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, assignment.SubjectEmployee, assignment.CreateAssignmentRequest{
		SubjectID:      "E1",
		ShiftID:        shiftID,
		ScheduleRuleID: &rule.ID,
		StartDate:      "2024-01-01",
		EndDate:        strPtr("2024-01-31"),
	})
	require.NoError(t, err)

	_, err = f.svc.GetActiveShift(ctx, "E1", mustDate("2024-01-12"))
	assert.NoError(t, err, "friday is a work day")

	_, err = f.svc.GetActiveShift(ctx, "E1", mustDate("2024-01-13"))
	assert.ErrorIs(t, err, assignment.ErrNoActiveShift, "saturday is not a work day")
}

func TestExpireAll_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")
	f.today = mustDate("2024-01-01")

	ending, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-01", strPtr("2024-01-05"))
	require.NoError(t, err)
	_, err = f.assign(assignment.SubjectEmployee, "E2", shiftID, "2024-01-01", nil)
	require.NoError(t, err)

	expired, err := f.svc.ListExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	f.today = mustDate("2024-01-10")

	expired, err = f.svc.ListExpired(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, string(assignment.StatusApproved), expired[0].Status, "listing does not modify rows")

	summary, err := f.svc.ExpireAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, assignment.SweepSummary{Processed: 1, Updated: 1}, summary)

	summary, err = f.svc.ExpireAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, assignment.SweepSummary{Processed: 1, Updated: 0}, summary)

	got, err := f.svc.Get(ctx, ending.ID)
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusExpired), got.Status)
}

func TestRecalculateAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	future, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-15", strPtr("2024-01-20"))
	require.NoError(t, err)
	require.Equal(t, string(assignment.StatusPending), future.Status)

	summary, err := f.svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)

	f.today = mustDate("2024-01-16")
	summary, err = f.svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, assignment.SweepSummary{Processed: 1, Updated: 1}, summary)

	got, err := f.svc.Get(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, string(assignment.StatusApproved), got.Status)
}

func TestListExpiring(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	_, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-01", strPtr("2024-01-31"))
	require.NoError(t, err)
	_, err = f.assign(assignment.SubjectEmployee, "E2", shiftID, "2024-02-01", nil)
	require.NoError(t, err)

	// The shift ends at 17:00 today.
	expiring, err := f.svc.ListExpiring(ctx, f.today.Add(18*time.Hour))
	require.NoError(t, err)
	require.Len(t, expiring, 1, "pending assignments are not listed")
	assert.Equal(t, "E1", expiring[0].SubjectID)
	assert.Equal(t, "Morning", expiring[0].ShiftName)

	expiring, err = f.svc.ListExpiring(ctx, f.today.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expiring)
}

// cancellingRepository cancels every row right after handing it to the caller,
// standing in for a Cancel that commits between a read and the following status write.
type cancellingRepository struct {
	assignment.AssignmentRepository
}

func (r cancellingRepository) cancel(ctx context.Context, list []assignment.Assignment) {
	for _, a := range list {
		if _, err := r.AssignmentRepository.UpdateStatus(ctx, a.ID, a.Status, assignment.StatusCancelled); err != nil {
			panic(err)
		}
	}
}

func (r cancellingRepository) GetByID(ctx context.Context, id string) (assignment.Assignment, error) {
	a, err := r.AssignmentRepository.GetByID(ctx, id)
	if err == nil && a.Status.IsLive() {
		r.cancel(ctx, []assignment.Assignment{a})
	}
	return a, err
}

func (r cancellingRepository) ListEndedBefore(ctx context.Context, day time.Time) ([]assignment.Assignment, error) {
	list, err := r.AssignmentRepository.ListEndedBefore(ctx, day)
	r.cancel(ctx, list)
	return list, err
}

func (r cancellingRepository) ListByStatus(ctx context.Context, statuses ...assignment.Status) ([]assignment.Assignment, error) {
	list, err := r.AssignmentRepository.ListByStatus(ctx, statuses...)
	r.cancel(ctx, list)
	return list, err
}

func TestSweeps_DoNotOverwriteConcurrentCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")
	f.today = mustDate("2024-01-01")

	ending, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-01", strPtr("2024-01-05"))
	require.NoError(t, err)
	future, err := f.assign(assignment.SubjectEmployee, "E2", shiftID, "2024-01-08", strPtr("2024-01-20"))
	require.NoError(t, err)

	inner := f.svc.repo
	f.svc.repo = cancellingRepository{AssignmentRepository: inner}
	f.today = mustDate("2024-01-10")

	summary, err := f.svc.ExpireAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, assignment.SweepSummary{Processed: 1, Skipped: 1}, summary)

	summary, err = f.svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, assignment.SweepSummary{Processed: 1, Skipped: 1}, summary)

	for _, id := range []string{ending.ID, future.ID} {
		got, err := inner.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, assignment.StatusCancelled, got.Status)
	}
}

func TestApprove_DoesNotOverwriteConcurrentCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shiftID := f.addShift(t, "Morning")

	created, err := f.assign(assignment.SubjectEmployee, "E1", shiftID, "2024-01-12", strPtr("2024-01-31"))
	require.NoError(t, err)

	inner := f.svc.repo
	f.svc.repo = cancellingRepository{AssignmentRepository: inner}
	f.today = mustDate("2024-01-12")

	_, err = f.svc.Approve(ctx, created.ID)
	assert.ErrorIs(t, err, assignment.ErrAssignmentCanceled)

	got, err := inner.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusCancelled, got.Status)
}
