package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
)

var testDB *TestDatabaseSetup

func TestMain(m *testing.M) {
	setup, err := NewTestDatabase(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if setup == nil {
		fmt.Println("TEST_DATABASE_URL not set, skipping postgres repository tests")
		os.Exit(0)
	}
	testDB = setup

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.TruncateAllTables(context.Background()))
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

func createShift(t *testing.T, ctx context.Context) shift.Shift {
	t.Helper()
	sh, err := postgresql.NewShiftRepository(testDB.DB).Create(ctx, shift.Shift{
		ID:          newID(),
		Name:        "Morning " + newID()[:8],
		Start:       9 * 60,
		End:         17 * 60,
		PunchPolicy: shift.PunchPolicyMultiple,
		Active:      true,
	})
	require.NoError(t, err)
	return sh
}

func createRecord(t *testing.T, ctx context.Context, employeeID, workDate string) attendance.Record {
	t.Helper()
	rec, err := postgresql.NewAttendanceRecordRepository(testDB.DB).Create(ctx, attendance.Record{
		ID:         newID(),
		EmployeeID: employeeID,
		WorkDate:   day(workDate),
		Punches: []attendance.Punch{
			{Type: attendance.PunchIn, Time: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)},
		},
		HasMissedPunch:    true,
		LatenessDeduction: decimal.RequireFromString("12.50"),
		Version:           1,
	})
	require.NoError(t, err)
	return rec
}

func TestShiftAssignmentRepository_ExclusionConstraint(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := postgresql.NewShiftAssignmentRepository(testDB.DB)
	sh := createShift(t, ctx)
	subject := assignment.Subject{Type: assignment.SubjectEmployee, ID: "E1"}

	first, err := repo.Create(ctx, assignment.Assignment{
		ID: newID(), Subject: subject, ShiftID: sh.ID,
		StartDate: day("2024-01-01"), EndDate: dayPtr("2024-01-31"), Status: assignment.StatusApproved,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, assignment.Assignment{
		ID: newID(), Subject: subject, ShiftID: sh.ID,
		StartDate: day("2024-01-31"), EndDate: dayPtr("2024-02-15"), Status: assignment.StatusPending,
	})
	assert.ErrorIs(t, err, assignment.ErrAssignmentConflict, "ranges sharing an end day overlap")

	overlapping, err := repo.FindOverlapping(ctx, subject, day("2024-01-15"), nil)
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, first.ID, overlapping[0].ID)

	moved, err := repo.UpdateStatus(ctx, first.ID, assignment.StatusPending, assignment.StatusExpired)
	require.NoError(t, err)
	assert.False(t, moved, "status write is conditional on the current status")

	moved, err = repo.UpdateStatus(ctx, first.ID, first.Status, assignment.StatusCancelled)
	require.NoError(t, err)
	require.True(t, moved)

	moved, err = repo.UpdateStatus(ctx, first.ID, first.Status, assignment.StatusExpired)
	require.NoError(t, err)
	assert.False(t, moved, "a cancelled row is not overwritten by a stale status")

	_, err = repo.UpdateStatus(ctx, newID(), assignment.StatusPending, assignment.StatusApproved)
	assert.ErrorIs(t, err, assignment.ErrAssignmentNotFound)
	_, err = repo.Create(ctx, assignment.Assignment{
		ID: newID(), Subject: subject, ShiftID: sh.ID,
		StartDate: day("2024-01-15"), Status: assignment.StatusApproved,
	})
	assert.NoError(t, err, "cancelled rows do not take part in the constraint")

	_, err = repo.Create(ctx, assignment.Assignment{
		ID: newID(), Subject: subject, ShiftID: newID(),
		StartDate: day("2023-01-01"), EndDate: dayPtr("2023-01-31"), Status: assignment.StatusExpired,
	})
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
}

func TestAttendanceRecordRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRecordRepository(testDB.DB)

	rec := createRecord(t, ctx, "E1", "2024-03-15")

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, got.Punches, 1)
	assert.True(t, got.Punches[0].Time.Equal(rec.Punches[0].Time))
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.LatenessDeduction))
	assert.Empty(t, got.ExceptionIDs)
	assert.Equal(t, 1, got.Version)

	_, err = repo.Create(ctx, attendance.Record{ID: newID(), EmployeeID: "E1", WorkDate: day("2024-03-15"), Version: 1})
	assert.ErrorIs(t, err, attendance.ErrRecordExists)

	got.ExceptionIDs = []string{"LEAVE-1"}
	updated, err := repo.Update(ctx, got, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []string{"LEAVE-1"}, updated.ExceptionIDs)

	_, err = repo.Update(ctx, got, 1)
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	got.ID = newID()
	_, err = repo.Update(ctx, got, 1)
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

	employee := "E1"
	list, err := repo.List(ctx, attendance.RecordFilter{EmployeeID: &employee, From: dayPtr("2024-03-01"), To: dayPtr("2024-03-31")})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	firstIn := time.Date(2024, 3, 15, 9, 7, 0, 0, time.UTC)
	updated.FirstInAt = &firstIn
	updated.FinalizedForPayroll = true
	locked, err := repo.Update(ctx, updated, updated.Version)
	require.NoError(t, err)
	require.NotNil(t, locked.FirstInAt)
	assert.True(t, firstIn.Equal(*locked.FirstInAt))

	err = repo.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, attendance.ErrRecordFinalized)
	_, err = repo.GetByID(ctx, rec.ID)
	assert.NoError(t, err, "finalized records are never deleted")

	assert.ErrorIs(t, repo.Delete(ctx, newID()), attendance.ErrRecordNotFound)
}

func TestCorrectionRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := postgresql.NewCorrectionRepository(testDB.DB)
	rec := createRecord(t, ctx, "E1", "2024-03-08")

	_, err := repo.Create(ctx, correction.Request{
		ID: newID(), EmployeeID: "E1", AttendanceRecordID: newID(),
		Reason: "missing record", Status: correction.StatusInReview, Version: 1,
	})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

	req, err := repo.Create(ctx, correction.Request{
		ID: newID(), EmployeeID: "E1", AttendanceRecordID: rec.ID,
		Reason: "forgot to punch out", Status: correction.StatusInReview, Version: 1,
		ProposedPunches: []attendance.Punch{
			{Type: attendance.PunchOut, Time: time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)
	require.Len(t, req.ProposedPunches, 1)

	open, err := repo.CountInReviewByRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	candidates, err := repo.ListEscalationCandidates(ctx, day("2024-03-07"))
	require.NoError(t, err)
	assert.Empty(t, candidates)

	candidates, err = repo.ListEscalationCandidates(ctx, day("2024-03-25"))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	marked, err := repo.MarkEscalated(ctx, req.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.MarkEscalated(ctx, req.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, marked)

	_, err = repo.MarkEscalated(ctx, newID(), time.Now())
	assert.ErrorIs(t, err, correction.ErrRequestNotFound)

	current, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Delete(ctx, req.ID, current.Version+1), correction.ErrVersionConflict)

	current.Status = correction.StatusRejected
	decided, err := repo.Update(ctx, current, current.Version)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Delete(ctx, req.ID, decided.Version), correction.ErrNotInReview, "decided requests are kept")

	require.NoError(t, postgresql.NewAttendanceRecordRepository(testDB.DB).Delete(ctx, rec.ID))
	_, err = repo.GetByID(ctx, req.ID)
	assert.ErrorIs(t, err, correction.ErrRequestNotFound, "requests cascade with their record")
}

func TestLatenessRuleRepository_SingleActive(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := postgresql.NewLatenessRuleRepository(testDB.DB)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	rule := lateness.Rule{ID: newID(), Name: "Default", GracePeriodMinutes: 5, DeductionPerMinute: decimal.NewFromInt(2), Active: true}
	_, err = repo.Create(ctx, rule)
	require.NoError(t, err)

	_, err = repo.Create(ctx, lateness.Rule{ID: newID(), Name: "Strict", DeductionPerMinute: decimal.NewFromInt(5), Active: true})
	assert.ErrorIs(t, err, lateness.ErrActiveRuleExists)

	active, err = repo.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, rule.ID, active.ID)
	assert.True(t, decimal.NewFromInt(2).Equal(active.DeductionPerMinute))
}
