package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.RequestRepository {
	return &correctionRepository{db: db}
}

const correctionColumns = `
	c.id, c.employee_id, c.attendance_record_id, c.reason, c.proposed_punches, c.status,
	c.reviewer_id, c.review_note, c.reviewed_at, c.escalated, c.escalated_at, c.version, c.created_at, c.updated_at`

func scanCorrection(row rowScanner) (correction.Request, error) {
	var r correction.Request
	var punches []byte
	var status string
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.AttendanceRecordID, &r.Reason, &punches, &status,
		&r.ReviewerID, &r.ReviewNote, &r.ReviewedAt, &r.Escalated, &r.EscalatedAt, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return correction.Request{}, err
	}
	r.Status = correction.Status(status)
	if punches != nil {
		if err := json.Unmarshal(punches, &r.ProposedPunches); err != nil {
			return correction.Request{}, fmt.Errorf("decode proposed punches: %w", err)
		}
	}
	return r, nil
}

// proposedPunches keeps SQL NULL for requests that only dispute a record.
func proposedPunches(punches []attendance.Punch) ([]byte, error) {
	if punches == nil {
		return nil, nil
	}
	return json.Marshal(punches)
}

// Create implements correction.RequestRepository.
func (r *correctionRepository) Create(ctx context.Context, req correction.Request) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	punches, err := proposedPunches(req.ProposedPunches)
	if err != nil {
		return correction.Request{}, err
	}

	query := `
		INSERT INTO attendance_correction_requests AS c (id, employee_id, attendance_record_id, reason, proposed_punches, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + correctionColumns

	created, err := scanCorrection(q.QueryRow(ctx, query,
		req.ID, req.EmployeeID, req.AttendanceRecordID, req.Reason, punches, string(req.Status),
	))
	if err != nil {
		if violates(err, codeForeignKey, "attendance_correction_requests_attendance_record_id_fkey") {
			return correction.Request{}, attendance.ErrRecordNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to create correction request: %w", err)
	}
	return created, nil
}

// GetByID implements correction.RequestRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanCorrection(q.QueryRow(ctx, `SELECT `+correctionColumns+` FROM attendance_correction_requests c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.Request{}, correction.ErrRequestNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	return req, nil
}

// List implements correction.RequestRepository.
func (r *correctionRepository) List(ctx context.Context, filter correction.RequestFilter) ([]correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("c.employee_id = $%d", len(args)))
	}
	if filter.AttendanceRecordID != nil {
		args = append(args, *filter.AttendanceRecordID)
		conditions = append(conditions, fmt.Sprintf("c.attendance_record_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.EscalatedOnly {
		conditions = append(conditions, "c.escalated")
	}

	query := `SELECT ` + correctionColumns + ` FROM attendance_correction_requests c`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.created_at, c.id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	return collect(rows, scanCorrection)
}

// Update implements correction.RequestRepository.
func (r *correctionRepository) Update(ctx context.Context, req correction.Request, expectedVersion int) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	punches, err := proposedPunches(req.ProposedPunches)
	if err != nil {
		return correction.Request{}, err
	}

	query := `
		UPDATE attendance_correction_requests AS c
		SET reason = $3, proposed_punches = $4, status = $5, reviewer_id = $6, review_note = $7, reviewed_at = $8,
			version = c.version + 1, updated_at = now()
		WHERE c.id = $1 AND c.version = $2
		RETURNING ` + correctionColumns

	updated, err := scanCorrection(q.QueryRow(ctx, query,
		req.ID, expectedVersion, req.Reason, punches, string(req.Status), req.ReviewerID, req.ReviewNote, req.ReviewedAt,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return correction.Request{}, fmt.Errorf("failed to update correction request: %w", err)
	}
	if _, getErr := r.GetByID(ctx, req.ID); getErr != nil {
		return correction.Request{}, getErr
	}
	return correction.Request{}, correction.ErrVersionConflict
}

// Delete implements correction.RequestRepository.
func (r *correctionRepository) Delete(ctx context.Context, id string, expectedVersion int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM attendance_correction_requests
		WHERE id = $1 AND version = $2 AND status = 'IN_REVIEW'`, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to delete correction request: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != correction.StatusInReview {
		return correction.ErrNotInReview
	}
	return correction.ErrVersionConflict
}

// CountInReviewByRecord implements correction.RequestRepository.
func (r *correctionRepository) CountInReviewByRecord(ctx context.Context, recordID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance_correction_requests
		WHERE attendance_record_id = $1 AND status = 'IN_REVIEW'`, recordID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open correction requests: %w", err)
	}
	return count, nil
}

// ListEscalationCandidates implements correction.RequestRepository.
func (r *correctionRepository) ListEscalationCandidates(ctx context.Context, cutoff time.Time) ([]correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + correctionColumns + `
		FROM attendance_correction_requests c
		JOIN attendance_records ar ON ar.id = c.attendance_record_id
		WHERE c.status = 'IN_REVIEW' AND NOT c.escalated AND ar.work_date <= $1::date
		ORDER BY c.created_at, c.id`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalation candidates: %w", err)
	}
	return collect(rows, scanCorrection)
}

// MarkEscalated implements correction.RequestRepository.
func (r *correctionRepository) MarkEscalated(ctx context.Context, id string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_correction_requests
		SET escalated = TRUE, escalated_at = $2, updated_at = now()
		WHERE id = $1 AND NOT escalated AND status = 'IN_REVIEW'`, id, at)
	if err != nil {
		return false, fmt.Errorf("failed to escalate correction request: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
