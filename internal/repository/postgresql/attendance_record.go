package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type attendanceRecordRepository struct {
	db *database.DB
}

func NewAttendanceRecordRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{db: db}
}

const attendanceRecordColumns = `
	id, employee_id, work_date, punches, first_in_at, total_work_minutes,
	has_missed_punch, missed_punch_reason, shift_id, late_minutes, lateness_deduction::text,
	exception_ids, finalized_for_payroll, finalized_at, version, created_at, updated_at`

func scanAttendanceRecord(row rowScanner) (attendance.Record, error) {
	var r attendance.Record
	var punches []byte
	var deduction string
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.WorkDate, &punches, &r.FirstInAt, &r.TotalWorkMinutes,
		&r.HasMissedPunch, &r.MissedPunchReason, &r.ShiftID, &r.LateMinutes, &deduction,
		&r.ExceptionIDs, &r.FinalizedForPayroll, &r.FinalizedAt, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	if err := json.Unmarshal(punches, &r.Punches); err != nil {
		return attendance.Record{}, fmt.Errorf("decode punches: %w", err)
	}
	if r.LatenessDeduction, err = decimal.NewFromString(deduction); err != nil {
		return attendance.Record{}, fmt.Errorf("decode lateness deduction: %w", err)
	}
	return r, nil
}

func encodePunches(punches []attendance.Punch) ([]byte, error) {
	if punches == nil {
		punches = []attendance.Punch{}
	}
	return json.Marshal(punches)
}

// Create implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	punches, err := encodePunches(record.Punches)
	if err != nil {
		return attendance.Record{}, err
	}
	if record.ExceptionIDs == nil {
		record.ExceptionIDs = []string{}
	}

	query := `
		INSERT INTO attendance_records (
			id, employee_id, work_date, punches, first_in_at, total_work_minutes,
			has_missed_punch, missed_punch_reason, shift_id, late_minutes, lateness_deduction,
			exception_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12)
		RETURNING ` + attendanceRecordColumns

	created, err := scanAttendanceRecord(q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.WorkDate, punches, record.FirstInAt, record.TotalWorkMinutes,
		record.HasMissedPunch, record.MissedPunchReason, record.ShiftID, record.LateMinutes, record.LatenessDeduction.String(),
		record.ExceptionIDs,
	))
	if err != nil {
		if violates(err, codeUniqueViolation, "ux_attendance_employee_day") {
			return attendance.Record{}, attendance.ErrRecordExists
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.RecordRepository.
func (r *attendanceRecordRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	record, err := scanAttendanceRecord(q.QueryRow(ctx, `SELECT `+attendanceRecordColumns+` FROM attendance_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return record, nil
}

// List implements attendance.RecordRepository.
func (r *attendanceRecordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("work_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("work_date <= $%d", len(args)))
	}
	if filter.Finalized != nil {
		args = append(args, *filter.Finalized)
		conditions = append(conditions, fmt.Sprintf("finalized_for_payroll = $%d", len(args)))
	}

	query := `SELECT ` + attendanceRecordColumns + ` FROM attendance_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY work_date DESC, employee_id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return collect(rows, scanAttendanceRecord)
}

// Update implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Update(ctx context.Context, record attendance.Record, expectedVersion int) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	punches, err := encodePunches(record.Punches)
	if err != nil {
		return attendance.Record{}, err
	}
	if record.ExceptionIDs == nil {
		record.ExceptionIDs = []string{}
	}

	query := `
		UPDATE attendance_records
		SET punches = $3, total_work_minutes = $4, has_missed_punch = $5, missed_punch_reason = $6,
			shift_id = $7, late_minutes = $8, lateness_deduction = $9::numeric, exception_ids = $10,
			finalized_for_payroll = $11, finalized_at = $12, first_in_at = $13,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING ` + attendanceRecordColumns

	updated, err := scanAttendanceRecord(q.QueryRow(ctx, query,
		record.ID, expectedVersion, punches, record.TotalWorkMinutes, record.HasMissedPunch, record.MissedPunchReason,
		record.ShiftID, record.LateMinutes, record.LatenessDeduction.String(), record.ExceptionIDs,
		record.FinalizedForPayroll, record.FinalizedAt, record.FirstInAt,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	// no row matched: either the record is gone or its version moved on
	if _, getErr := r.GetByID(ctx, record.ID); getErr != nil {
		return attendance.Record{}, getErr
	}
	return attendance.Record{}, attendance.ErrVersionConflict
}

// Delete implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1 AND NOT finalized_for_payroll`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return attendance.ErrRecordFinalized
}
