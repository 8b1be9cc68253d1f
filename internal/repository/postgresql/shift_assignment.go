package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type shiftAssignmentRepository struct {
	db *database.DB
}

func NewShiftAssignmentRepository(db *database.DB) assignment.AssignmentRepository {
	return &shiftAssignmentRepository{db: db}
}

const shiftAssignmentColumns = `
	id, subject_type, subject_id, shift_id, schedule_rule_id,
	start_date, end_date, status, created_at, updated_at`

func scanShiftAssignment(row rowScanner) (assignment.Assignment, error) {
	var a assignment.Assignment
	var subjectType, status string
	err := row.Scan(
		&a.ID, &subjectType, &a.Subject.ID, &a.ShiftID, &a.ScheduleRuleID,
		&a.StartDate, &a.EndDate, &status, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Subject.Type = assignment.SubjectType(subjectType)
	a.Status = assignment.Status(status)
	return a, err
}

func shiftAssignmentWriteError(err error, action string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return assignment.ErrAssignmentNotFound
	case violates(err, codeExclusionViolation, "no_overlapping_shift_assignments"):
		return assignment.ErrAssignmentConflict
	case violates(err, codeCheckViolation, "shift_assignments_valid_range"):
		return assignment.ErrInvalidDateRange
	case violates(err, codeForeignKey, "shift_assignments_shift_id_fkey"):
		return shift.ErrShiftNotFound
	case violates(err, codeForeignKey, "shift_assignments_schedule_rule_id_fkey"):
		return schedulerule.ErrScheduleRuleNotFound
	}
	return fmt.Errorf("failed to %s shift assignment: %w", action, err)
}

func (r *shiftAssignmentRepository) list(ctx context.Context, where string, args ...any) ([]assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftAssignmentColumns + ` FROM shift_assignments WHERE ` + where + ` ORDER BY start_date, id`
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	return collect(rows, scanShiftAssignment)
}

// Create implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) Create(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_assignments (
			id, subject_type, subject_id, shift_id, schedule_rule_id, start_date, end_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + shiftAssignmentColumns

	created, err := scanShiftAssignment(q.QueryRow(ctx, query,
		a.ID, string(a.Subject.Type), a.Subject.ID, a.ShiftID, a.ScheduleRuleID,
		a.StartDate, a.EndDate, string(a.Status),
	))
	if err != nil {
		return assignment.Assignment{}, shiftAssignmentWriteError(err, "create")
	}
	return created, nil
}

// GetByID implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) GetByID(ctx context.Context, id string) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanShiftAssignment(q.QueryRow(ctx, `SELECT `+shiftAssignmentColumns+` FROM shift_assignments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrAssignmentNotFound
		}
		return assignment.Assignment{}, fmt.Errorf("failed to get shift assignment: %w", err)
	}
	return a, nil
}

// Update implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) Update(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shift_assignments
		SET shift_id = $2, schedule_rule_id = $3, start_date = $4, end_date = $5, status = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + shiftAssignmentColumns

	updated, err := scanShiftAssignment(q.QueryRow(ctx, query,
		a.ID, a.ShiftID, a.ScheduleRuleID, a.StartDate, a.EndDate, string(a.Status),
	))
	if err != nil {
		return assignment.Assignment{}, shiftAssignmentWriteError(err, "update")
	}
	return updated, nil
}

// UpdateStatus implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) UpdateStatus(ctx context.Context, id string, from, to assignment.Status) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE shift_assignments SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return false, shiftAssignmentWriteError(err, "update status of")
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Delete implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrAssignmentNotFound
	}
	return nil
}

// DeleteBySubject implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) DeleteBySubject(ctx context.Context, subject assignment.Subject) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_assignments WHERE subject_type = $1 AND subject_id = $2`,
		string(subject.Type), subject.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete shift assignments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListBySubject implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) ListBySubject(ctx context.Context, subject assignment.Subject) ([]assignment.Assignment, error) {
	return r.list(ctx, `subject_type = $1 AND subject_id = $2`, string(subject.Type), subject.ID)
}

// ListBySubjectType implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) ListBySubjectType(ctx context.Context, subjectType assignment.SubjectType) ([]assignment.Assignment, error) {
	return r.list(ctx, `subject_type = $1`, string(subjectType))
}

// ListByStatus implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) ListByStatus(ctx context.Context, statuses ...assignment.Status) ([]assignment.Assignment, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return r.list(ctx, `status = ANY($1::text[])`, values)
}

// FindOverlapping implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) FindOverlapping(ctx context.Context, subject assignment.Subject, start time.Time, end *time.Time, excludeIDs ...string) ([]assignment.Assignment, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	return r.list(ctx, `
		subject_type = $1 AND subject_id = $2
		AND status <> 'CANCELLED'
		AND daterange(start_date, end_date, '[]') && daterange($3::date, $4::date, '[]')
		AND id::text <> ALL($5::text[])`,
		string(subject.Type), subject.ID, start, end, excludeIDs,
	)
}

// ListCovering implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) ListCovering(ctx context.Context, subjects []assignment.Subject, date time.Time) ([]assignment.Assignment, error) {
	keys := make([]string, 0, len(subjects))
	for _, s := range subjects {
		keys = append(keys, s.Key())
	}
	return r.list(ctx, `
		subject_type || ':' || subject_id = ANY($1::text[])
		AND status <> 'CANCELLED'
		AND start_date <= $2
		AND (end_date IS NULL OR end_date >= $2)`,
		keys, date,
	)
}

// ListEndedBefore implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) ListEndedBefore(ctx context.Context, day time.Time) ([]assignment.Assignment, error) {
	return r.list(ctx, `status <> 'CANCELLED' AND end_date IS NOT NULL AND end_date < $1`, day)
}

// CountLiveByShiftID implements assignment.AssignmentRepository.
func (r *shiftAssignmentRepository) CountLiveByShiftID(ctx context.Context, shiftID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM shift_assignments
		WHERE shift_id = $1 AND status IN ('PENDING', 'APPROVED')`, shiftID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count shift assignments: %w", err)
	}
	return count, nil
}

// LockSubject implements assignment.AssignmentRepository. It must run inside a transaction.
func (r *shiftAssignmentRepository) LockSubject(ctx context.Context, subject assignment.Subject) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, subject.Key()); err != nil {
		return fmt.Errorf("failed to lock subject %s: %w", subject.Key(), err)
	}
	return nil
}
