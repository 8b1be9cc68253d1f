package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	latenesssvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/lateness"
)

// fixedResolver assigns every employee in shifts the same shift on every day.
type fixedResolver struct {
	shifts map[string]shift.Shift
}

func (r fixedResolver) GetActiveShift(_ context.Context, employeeID string, _ time.Time) (assignment.ActiveShift, error) {
	sh, ok := r.shifts[employeeID]
	if !ok {
		return assignment.ActiveShift{}, assignment.ErrNoActiveShift
	}
	return assignment.ActiveShift{Shift: sh}, nil
}

type stubReviews struct {
	open map[string]int
}

func (s stubReviews) CountInReviewByRecord(_ context.Context, recordID string) (int, error) {
	return s.open[recordID], nil
}

type attendanceFixture struct {
	svc     *attendanceServiceImpl
	reviews stubReviews
	shift   shift.Shift
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	ruleRepo := memory.NewLatenessRuleRepository(store)
	_, err := ruleRepo.Create(ctx, lateness.Rule{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		Name:               "Default",
		GracePeriodMinutes: 5,
		DeductionPerMinute: decimal.NewFromInt(2),
		Active:             true,
	})
	require.NoError(t, err)

	morning := shift.Shift{
		ID:             uuid.Must(uuid.NewV7()).String(),
		Name:           "Morning",
		Start:          9 * 60,
		End:            17 * 60,
		PunchPolicy:    shift.PunchPolicyMultiple,
		GraceInMinutes: 10,
		Active:         true,
	}

	f := &attendanceFixture{
		reviews: stubReviews{open: map[string]int{}},
		shift:   morning,
	}
	svc := NewAttendanceService(
		memory.NewTransactor(),
		memory.NewRecordRepository(store),
		f.reviews,
		fixedResolver{shifts: map[string]shift.Shift{"E1": morning}},
		latenesssvc.NewLatenessService(ruleRepo, memory.NewShiftRepository(store), time.UTC),
		nil,
		Options{RoundingMinutes: 5, Location: time.UTC},
	)
	f.svc = svc.(*attendanceServiceImpl)
	return f
}

func punchReq(typ, clock string) attendance.PunchRequest {
	return attendance.PunchRequest{Type: typ, Time: "2024-03-15T" + clock + "Z"}
}

func TestCreate_DerivesFields(t *testing.T) {
	f := newAttendanceFixture(t)

	rec, err := f.svc.Create(context.Background(), attendance.CreateRecordRequest{
		EmployeeID: "E1",
		WorkDate:   "2024-03-15",
		Punches: []attendance.PunchRequest{
			punchReq("OUT", "16:58:00"),
			punchReq("IN", "09:22:00"),
		},
	})
	require.NoError(t, err)

	require.Len(t, rec.Punches, 2)
	assert.Equal(t, attendance.PunchIn, rec.Punches[0].Type)
	assert.Equal(t, "09:20", rec.Punches[0].Time.Format("15:04"), "first IN is floored")
	assert.Equal(t, "17:00", rec.Punches[1].Time.Format("15:04"), "last OUT is ceiled")

	assert.Equal(t, 460, rec.TotalWorkMinutes)
	assert.False(t, rec.HasMissedPunch)
	assert.Nil(t, rec.MissedPunchReason)
	require.NotNil(t, rec.ShiftID)
	assert.Equal(t, f.shift.ID, *rec.ShiftID)
	require.NotNil(t, rec.FirstInAt)
	assert.Equal(t, "2024-03-15T09:22:00Z", *rec.FirstInAt)
	assert.Equal(t, 7, rec.LateMinutes, "lateness is measured from the punch as recorded, not the rounded one")
	assert.True(t, decimal.NewFromInt(14).Equal(rec.LatenessDeduction))
	assert.Equal(t, 1, rec.Version)
}

func TestCreate_LatenessIgnoresRounding(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	f.svc.grid = 15 * time.Minute

	rec, err := f.svc.Create(ctx, attendance.CreateRecordRequest{
		EmployeeID: "E1",
		WorkDate:   "2024-03-15",
		Punches:    []attendance.PunchRequest{punchReq("IN", "09:20:00"), punchReq("OUT", "17:00:00")},
	})
	require.NoError(t, err)

	assert.Equal(t, "09:15", rec.Punches[0].Time.Format("15:04"))
	assert.Equal(t, 5, rec.LateMinutes)
	assert.True(t, decimal.NewFromInt(10).Equal(rec.LatenessDeduction))

	// Updating without new punches keeps measuring from the recorded punch.
	updated, err := f.svc.Update(ctx, attendance.UpdateRecordRequest{
		ID:              rec.ID,
		ExceptionIDs:    []string{"X1"},
		ExpectedVersion: rec.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.LateMinutes)
	assert.True(t, decimal.NewFromInt(10).Equal(updated.LatenessDeduction))

	updated, err = f.svc.Update(ctx, attendance.UpdateRecordRequest{
		ID:              rec.ID,
		Punches:         []attendance.PunchRequest{punchReq("IN", "09:14:00"), punchReq("OUT", "17:00:00")},
		ExpectedVersion: updated.Version,
	})
	require.NoError(t, err)
	assert.Zero(t, updated.LateMinutes)
	require.NotNil(t, updated.FirstInAt)
	assert.Equal(t, "2024-03-15T09:14:00Z", *updated.FirstInAt)
}

func TestCreate_WithoutShiftOrOut(t *testing.T) {
	f := newAttendanceFixture(t)

	rec, err := f.svc.Create(context.Background(), attendance.CreateRecordRequest{
		EmployeeID: "E2",
		WorkDate:   "2024-03-15",
		Punches:    []attendance.PunchRequest{punchReq("IN", "10:00:00")},
	})
	require.NoError(t, err)

	assert.True(t, rec.HasMissedPunch)
	require.NotNil(t, rec.MissedPunchReason)
	assert.Equal(t, attendance.MissedOutPunch, *rec.MissedPunchReason)
	assert.Nil(t, rec.ShiftID)
	assert.Zero(t, rec.LateMinutes)
	assert.Zero(t, rec.TotalWorkMinutes)
}

func TestCreate_OneRecordPerEmployeeAndDay(t *testing.T) {
	f := newAttendanceFixture(t)
	req := attendance.CreateRecordRequest{EmployeeID: "E1", WorkDate: "2024-03-15"}

	_, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrRecordExists)
}

func TestUpdate_VersionChecks(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)

	rec, err := f.svc.Create(ctx, attendance.CreateRecordRequest{
		EmployeeID: "E1",
		WorkDate:   "2024-03-15",
		Punches:    []attendance.PunchRequest{punchReq("IN", "09:00:00")},
	})
	require.NoError(t, err)
	require.True(t, rec.HasMissedPunch)

	updated, err := f.svc.Update(ctx, attendance.UpdateRecordRequest{
		ID:              rec.ID,
		Punches:         []attendance.PunchRequest{punchReq("IN", "09:00:00"), punchReq("OUT", "17:00:00")},
		ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.False(t, updated.HasMissedPunch)
	assert.Equal(t, 480, updated.TotalWorkMinutes)

	_, err = f.svc.Update(ctx, attendance.UpdateRecordRequest{
		ID:              rec.ID,
		ExceptionIDs:    []string{"X1"},
		ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)
}

func TestFinalize_Guards(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)

	incomplete, err := f.svc.Create(ctx, attendance.CreateRecordRequest{
		EmployeeID: "E1",
		WorkDate:   "2024-03-14",
		Punches:    []attendance.PunchRequest{punchReq("IN", "09:00:00")},
	})
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, incomplete.ID, incomplete.Version)
	assert.ErrorIs(t, err, attendance.ErrMissedPunch)

	rec, err := f.svc.Create(ctx, attendance.CreateRecordRequest{
		EmployeeID: "E1",
		WorkDate:   "2024-03-15",
		Punches:    []attendance.PunchRequest{punchReq("IN", "09:00:00"), punchReq("OUT", "17:00:00")},
	})
	require.NoError(t, err)

	f.reviews.open[rec.ID] = 1
	_, err = f.svc.Finalize(ctx, rec.ID, rec.Version)
	assert.ErrorIs(t, err, attendance.ErrCorrectionInReview)
	delete(f.reviews.open, rec.ID)

	_, err = f.svc.Finalize(ctx, rec.ID, rec.Version+1)
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)

	finalized, err := f.svc.Finalize(ctx, rec.ID, rec.Version)
	require.NoError(t, err)
	assert.True(t, finalized.FinalizedForPayroll)
	assert.NotNil(t, finalized.FinalizedAt)

	_, err = f.svc.Finalize(ctx, rec.ID, finalized.Version)
	assert.ErrorIs(t, err, attendance.ErrRecordFinalized)

	_, err = f.svc.Update(ctx, attendance.UpdateRecordRequest{ID: rec.ID, ExceptionIDs: []string{}, ExpectedVersion: finalized.Version})
	assert.ErrorIs(t, err, attendance.ErrRecordFinalized)

	err = f.svc.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, attendance.ErrRecordFinalized)

	_, err = f.svc.ApplyPunches(ctx, rec.ID, nil)
	assert.ErrorIs(t, err, attendance.ErrRecordFinalized)
}

// finalizingRepository locks every record for payroll right after handing out a copy of it,
// standing in for a Finalize that commits between a read and the following write.
type finalizingRepository struct {
	attendance.RecordRepository
}

func (r finalizingRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	rec, err := r.RecordRepository.GetByID(ctx, id)
	if err != nil || rec.FinalizedForPayroll {
		return rec, err
	}
	locked := rec
	locked.FinalizedForPayroll = true
	if _, err := r.RecordRepository.Update(ctx, locked, rec.Version); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

func TestDelete_DoesNotRemoveConcurrentlyFinalizedRecord(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)

	rec, err := f.svc.Create(ctx, attendance.CreateRecordRequest{
		EmployeeID: "E1",
		WorkDate:   "2024-03-15",
		Punches:    []attendance.PunchRequest{punchReq("IN", "09:00:00"), punchReq("OUT", "17:00:00")},
	})
	require.NoError(t, err)

	inner := f.svc.recordRepo
	f.svc.recordRepo = finalizingRepository{RecordRepository: inner}

	err = f.svc.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, attendance.ErrRecordFinalized)

	kept, err := inner.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, kept.FinalizedForPayroll)
}
