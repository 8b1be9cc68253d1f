package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type scheduleRuleRepository struct {
	db *database.DB
}

func NewScheduleRuleRepository(db *database.DB) schedulerule.ScheduleRuleRepository {
	return &scheduleRuleRepository{db: db}
}

const scheduleRuleColumns = `id, name, work_days, active, created_at, updated_at`

func scanScheduleRule(row rowScanner) (schedulerule.ScheduleRule, error) {
	var r schedulerule.ScheduleRule
	err := row.Scan(&r.ID, &r.Name, &r.WorkDays, &r.Active, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scheduleRuleWriteError(err error, action string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return schedulerule.ErrScheduleRuleNotFound
	case violates(err, codeUniqueViolation, "schedule_rules_name_key"):
		return schedulerule.ErrScheduleRuleNameExists
	}
	return fmt.Errorf("failed to %s schedule rule: %w", action, err)
}

// Create implements schedulerule.ScheduleRuleRepository.
func (r *scheduleRuleRepository) Create(ctx context.Context, rule schedulerule.ScheduleRule) (schedulerule.ScheduleRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schedule_rules (id, name, work_days, active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + scheduleRuleColumns

	created, err := scanScheduleRule(q.QueryRow(ctx, query, rule.ID, rule.Name, rule.WorkDays, rule.Active))
	if err != nil {
		return schedulerule.ScheduleRule{}, scheduleRuleWriteError(err, "create")
	}
	return created, nil
}

// GetByID implements schedulerule.ScheduleRuleRepository.
func (r *scheduleRuleRepository) GetByID(ctx context.Context, id string) (schedulerule.ScheduleRule, error) {
	q := GetQuerier(ctx, r.db)

	rule, err := scanScheduleRule(q.QueryRow(ctx, `SELECT `+scheduleRuleColumns+` FROM schedule_rules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedulerule.ScheduleRule{}, schedulerule.ErrScheduleRuleNotFound
		}
		return schedulerule.ScheduleRule{}, fmt.Errorf("failed to get schedule rule: %w", err)
	}
	return rule, nil
}

// List implements schedulerule.ScheduleRuleRepository.
func (r *scheduleRuleRepository) List(ctx context.Context) ([]schedulerule.ScheduleRule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+scheduleRuleColumns+` FROM schedule_rules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule rules: %w", err)
	}
	return collect(rows, scanScheduleRule)
}

// Update implements schedulerule.ScheduleRuleRepository.
func (r *scheduleRuleRepository) Update(ctx context.Context, rule schedulerule.ScheduleRule) (schedulerule.ScheduleRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedule_rules
		SET name = $2, work_days = $3, active = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + scheduleRuleColumns

	updated, err := scanScheduleRule(q.QueryRow(ctx, query, rule.ID, rule.Name, rule.WorkDays, rule.Active))
	if err != nil {
		return schedulerule.ScheduleRule{}, scheduleRuleWriteError(err, "update")
	}
	return updated, nil
}

// Delete implements schedulerule.ScheduleRuleRepository.
func (r *scheduleRuleRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schedule_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedulerule.ErrScheduleRuleNotFound
	}
	return nil
}
