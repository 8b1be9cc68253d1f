package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepository{db: db}
}

const holidayColumns = `id, name, type, start_date, end_date, active, created_at, updated_at`

func scanHoliday(row rowScanner) (calendar.Holiday, error) {
	var h calendar.Holiday
	var holidayType string
	err := row.Scan(&h.ID, &h.Name, &holidayType, &h.StartDate, &h.EndDate, &h.Active, &h.CreatedAt, &h.UpdatedAt)
	h.Type = calendar.HolidayType(holidayType)
	return h, err
}

// Create implements calendar.HolidayRepository.
func (r *holidayRepository) Create(ctx context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (id, name, type, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + holidayColumns

	created, err := scanHoliday(q.QueryRow(ctx, query, h.ID, h.Name, string(h.Type), h.StartDate, h.EndDate, h.Active))
	if err != nil {
		return calendar.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

// GetByID implements calendar.HolidayRepository.
func (r *holidayRepository) GetByID(ctx context.Context, id string) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	h, err := scanHoliday(q.QueryRow(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Holiday{}, calendar.ErrHolidayNotFound
		}
		return calendar.Holiday{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return h, nil
}

// List implements calendar.HolidayRepository.
func (r *holidayRepository) List(ctx context.Context, filter calendar.HolidayFilter) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	if filter.ActiveOnly {
		conditions = append(conditions, "active")
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(EXTRACT(YEAR FROM start_date) = $%d OR EXTRACT(YEAR FROM COALESCE(end_date, start_date)) = $%d)", n, n))
	}

	query := `SELECT ` + holidayColumns + ` FROM holidays`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_date, id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return collect(rows, scanHoliday)
}

// Update implements calendar.HolidayRepository.
func (r *holidayRepository) Update(ctx context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE holidays
		SET name = $2, type = $3, start_date = $4, end_date = $5, active = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + holidayColumns

	updated, err := scanHoliday(q.QueryRow(ctx, query, h.ID, h.Name, string(h.Type), h.StartDate, h.EndDate, h.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Holiday{}, calendar.ErrHolidayNotFound
		}
		return calendar.Holiday{}, fmt.Errorf("failed to update holiday: %w", err)
	}
	return updated, nil
}

// Delete implements calendar.HolidayRepository.
func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calendar.ErrHolidayNotFound
	}
	return nil
}

// ListActiveBetween implements calendar.HolidayRepository.
func (r *holidayRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + holidayColumns + `
		FROM holidays
		WHERE active
		  AND start_date <= $2
		  AND COALESCE(end_date, start_date) >= $1
		ORDER BY start_date`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list active holidays: %w", err)
	}
	return collect(rows, scanHoliday)
}
