package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type latenessRuleRepository struct {
	db *database.DB
}

func NewLatenessRuleRepository(db *database.DB) lateness.RuleRepository {
	return &latenessRuleRepository{db: db}
}

const latenessRuleColumns = `
	id, name, description, grace_period_minutes, deduction_per_minute::text, active, created_at, updated_at`

func scanLatenessRule(row rowScanner) (lateness.Rule, error) {
	var r lateness.Rule
	var deduction string
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.GracePeriodMinutes, &deduction, &r.Active, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return lateness.Rule{}, err
	}
	if r.DeductionPerMinute, err = decimal.NewFromString(deduction); err != nil {
		return lateness.Rule{}, fmt.Errorf("decode deduction per minute: %w", err)
	}
	return r, nil
}

func latenessRuleWriteError(err error, action string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return lateness.ErrRuleNotFound
	case violates(err, codeUniqueViolation, "ux_lateness_rules_single_active"):
		return lateness.ErrActiveRuleExists
	}
	return fmt.Errorf("failed to %s lateness rule: %w", action, err)
}

// Create implements lateness.RuleRepository.
func (r *latenessRuleRepository) Create(ctx context.Context, rule lateness.Rule) (lateness.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO lateness_rules (id, name, description, grace_period_minutes, deduction_per_minute, active)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		RETURNING ` + latenessRuleColumns

	created, err := scanLatenessRule(q.QueryRow(ctx, query,
		rule.ID, rule.Name, rule.Description, rule.GracePeriodMinutes, rule.DeductionPerMinute.String(), rule.Active,
	))
	if err != nil {
		return lateness.Rule{}, latenessRuleWriteError(err, "create")
	}
	return created, nil
}

// GetByID implements lateness.RuleRepository.
func (r *latenessRuleRepository) GetByID(ctx context.Context, id string) (lateness.Rule, error) {
	q := GetQuerier(ctx, r.db)

	rule, err := scanLatenessRule(q.QueryRow(ctx, `SELECT `+latenessRuleColumns+` FROM lateness_rules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lateness.Rule{}, lateness.ErrRuleNotFound
		}
		return lateness.Rule{}, fmt.Errorf("failed to get lateness rule: %w", err)
	}
	return rule, nil
}

// List implements lateness.RuleRepository.
func (r *latenessRuleRepository) List(ctx context.Context) ([]lateness.Rule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+latenessRuleColumns+` FROM lateness_rules ORDER BY active DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lateness rules: %w", err)
	}
	return collect(rows, scanLatenessRule)
}

// Update implements lateness.RuleRepository.
func (r *latenessRuleRepository) Update(ctx context.Context, rule lateness.Rule) (lateness.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE lateness_rules
		SET name = $2, description = $3, grace_period_minutes = $4, deduction_per_minute = $5::numeric,
			active = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + latenessRuleColumns

	updated, err := scanLatenessRule(q.QueryRow(ctx, query,
		rule.ID, rule.Name, rule.Description, rule.GracePeriodMinutes, rule.DeductionPerMinute.String(), rule.Active,
	))
	if err != nil {
		return lateness.Rule{}, latenessRuleWriteError(err, "update")
	}
	return updated, nil
}

// Delete implements lateness.RuleRepository.
func (r *latenessRuleRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM lateness_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lateness rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lateness.ErrRuleNotFound
	}
	return nil
}

// FindActive implements lateness.RuleRepository.
func (r *latenessRuleRepository) FindActive(ctx context.Context) (*lateness.Rule, error) {
	q := GetQuerier(ctx, r.db)

	rule, err := scanLatenessRule(q.QueryRow(ctx, `SELECT `+latenessRuleColumns+` FROM lateness_rules WHERE active LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active lateness rule: %w", err)
	}
	return &rule, nil
}
