package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type subjectDirectory struct {
	db *database.DB
}

// NewSubjectDirectory reads the employee and organization tables owned by the core HR modules.
func NewSubjectDirectory(db *database.DB) assignment.SubjectDirectory {
	return &subjectDirectory{db: db}
}

// Exists implements assignment.SubjectDirectory.
func (d *subjectDirectory) Exists(ctx context.Context, subject assignment.Subject) (bool, error) {
	q := GetQuerier(ctx, d.db)

	var query string
	switch subject.Type {
	case assignment.SubjectEmployee:
		query = `SELECT EXISTS(SELECT 1 FROM employees WHERE id::text = $1 AND deleted_at IS NULL)`
	case assignment.SubjectDepartment:
		query = `SELECT EXISTS(SELECT 1 FROM departments WHERE id::text = $1)`
	case assignment.SubjectPosition:
		query = `SELECT EXISTS(SELECT 1 FROM positions WHERE id::text = $1)`
	default:
		return false, assignment.ErrInvalidSubjectType
	}

	var exists bool
	if err := q.QueryRow(ctx, query, subject.ID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s subject: %w", subject.Type, err)
	}
	return exists, nil
}

// EmployeePlacement implements assignment.SubjectDirectory.
func (d *subjectDirectory) EmployeePlacement(ctx context.Context, employeeID string) (*string, *string, error) {
	q := GetQuerier(ctx, d.db)

	var departmentID, positionID *string
	err := q.QueryRow(ctx, `
		SELECT department_id::text, position_id::text
		FROM employees
		WHERE id::text = $1 AND deleted_at IS NULL`, employeeID).Scan(&departmentID, &positionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, assignment.ErrSubjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to get employee placement: %w", err)
	}
	return departmentID, positionID, nil
}
