package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `
	id, name, shift_type_id,
	to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	punch_policy, grace_in_minutes, grace_out_minutes,
	requires_overtime_approval, active, created_at, updated_at`

func scanShift(row rowScanner) (shift.Shift, error) {
	var s shift.Shift
	var start, end, policy string
	err := row.Scan(
		&s.ID, &s.Name, &s.ShiftTypeID,
		&start, &end,
		&policy, &s.GraceInMinutes, &s.GraceOutMinutes,
		&s.RequiresOvertimeApproval, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return shift.Shift{}, err
	}
	s.PunchPolicy = shift.PunchPolicy(policy)
	if s.Start, err = shift.ParseTimeOfDay(start); err != nil {
		return shift.Shift{}, err
	}
	if s.End, err = shift.ParseTimeOfDay(end); err != nil {
		return shift.Shift{}, err
	}
	return s, nil
}

func shiftWriteError(err error, action string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return shift.ErrShiftNotFound
	case violates(err, codeUniqueViolation, "shifts_name_key"):
		return shift.ErrShiftNameExists
	case violates(err, codeForeignKey, ""):
		return shift.ErrShiftTypeNotFound
	case violates(err, codeCheckViolation, "shifts_start_before_end"):
		return shift.ErrShiftStartAfterEnd
	}
	return fmt.Errorf("failed to %s shift: %w", action, err)
}

// Create implements shift.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (
			id, name, shift_type_id, start_time, end_time, punch_policy,
			grace_in_minutes, grace_out_minutes, requires_overtime_approval, active
		)
		VALUES ($1, $2, $3, $4::time, $5::time, $6, $7, $8, $9, $10)
		RETURNING ` + shiftColumns

	created, err := scanShift(q.QueryRow(ctx, query,
		s.ID, s.Name, s.ShiftTypeID, s.Start.String(), s.End.String(), string(s.PunchPolicy),
		s.GraceInMinutes, s.GraceOutMinutes, s.RequiresOvertimeApproval, s.Active,
	))
	if err != nil {
		return shift.Shift{}, shiftWriteError(err, "create")
	}
	return created, nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanShift(q.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return s, nil
}

// List implements shift.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, filter shift.ShiftFilter) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	if filter.ActiveOnly {
		conditions = append(conditions, "active")
	}
	if filter.ShiftTypeID != nil {
		args = append(args, *filter.ShiftTypeID)
		conditions = append(conditions, fmt.Sprintf("shift_type_id = $%d", len(args)))
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time, name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return collect(rows, scanShift)
}

// Update implements shift.ShiftRepository.
func (r *shiftRepository) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET name = $2, shift_type_id = $3, start_time = $4::time, end_time = $5::time,
			punch_policy = $6, grace_in_minutes = $7, grace_out_minutes = $8,
			requires_overtime_approval = $9, active = $10, updated_at = now()
		WHERE id = $1
		RETURNING ` + shiftColumns

	updated, err := scanShift(q.QueryRow(ctx, query,
		s.ID, s.Name, s.ShiftTypeID, s.Start.String(), s.End.String(), string(s.PunchPolicy),
		s.GraceInMinutes, s.GraceOutMinutes, s.RequiresOvertimeApproval, s.Active,
	))
	if err != nil {
		return shift.Shift{}, shiftWriteError(err, "update")
	}
	return updated, nil
}

// Delete implements shift.ShiftRepository.
func (r *shiftRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		if violates(err, codeForeignKey, "") {
			return shift.ErrShiftInUse
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

type shiftTypeRepository struct {
	db *database.DB
}

func NewShiftTypeRepository(db *database.DB) shift.ShiftTypeRepository {
	return &shiftTypeRepository{db: db}
}

const shiftTypeColumns = `id, name, description, active, created_at, updated_at`

func scanShiftType(row rowScanner) (shift.ShiftType, error) {
	var t shift.ShiftType
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func shiftTypeWriteError(err error, action string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return shift.ErrShiftTypeNotFound
	case violates(err, codeUniqueViolation, "shift_types_name_key"):
		return shift.ErrShiftTypeNameExists
	}
	return fmt.Errorf("failed to %s shift type: %w", action, err)
}

// Create implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Create(ctx context.Context, t shift.ShiftType) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_types (id, name, description, active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + shiftTypeColumns

	created, err := scanShiftType(q.QueryRow(ctx, query, t.ID, t.Name, t.Description, t.Active))
	if err != nil {
		return shift.ShiftType{}, shiftTypeWriteError(err, "create")
	}
	return created, nil
}

// GetByID implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) GetByID(ctx context.Context, id string) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanShiftType(q.QueryRow(ctx, `SELECT `+shiftTypeColumns+` FROM shift_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ShiftType{}, shift.ErrShiftTypeNotFound
		}
		return shift.ShiftType{}, fmt.Errorf("failed to get shift type: %w", err)
	}
	return t, nil
}

// List implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) List(ctx context.Context) ([]shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+shiftTypeColumns+` FROM shift_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift types: %w", err)
	}
	return collect(rows, scanShiftType)
}

// Update implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Update(ctx context.Context, t shift.ShiftType) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shift_types
		SET name = $2, description = $3, active = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + shiftTypeColumns

	updated, err := scanShiftType(q.QueryRow(ctx, query, t.ID, t.Name, t.Description, t.Active))
	if err != nil {
		return shift.ShiftType{}, shiftTypeWriteError(err, "update")
	}
	return updated, nil
}

// Delete implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftTypeNotFound
	}
	return nil
}
