package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type overtimeRuleRepository struct {
	db *database.DB
}

func NewOvertimeRuleRepository(db *database.DB) overtime.RuleRepository {
	return &overtimeRuleRepository{db: db}
}

const overtimeRuleColumns = `
	id, name, kind, multiplier::text, min_hours::text, active, approved, created_at, updated_at`

func scanOvertimeRule(row rowScanner) (overtime.Rule, error) {
	var r overtime.Rule
	var kind, multiplier, minHours string
	err := row.Scan(&r.ID, &r.Name, &kind, &multiplier, &minHours, &r.Active, &r.Approved, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return overtime.Rule{}, err
	}
	r.Kind = overtime.Kind(kind)
	if r.Multiplier, err = decimal.NewFromString(multiplier); err != nil {
		return overtime.Rule{}, fmt.Errorf("decode multiplier: %w", err)
	}
	if r.MinHours, err = decimal.NewFromString(minHours); err != nil {
		return overtime.Rule{}, fmt.Errorf("decode min hours: %w", err)
	}
	return r, nil
}

func overtimeRuleWriteError(err error, action string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return overtime.ErrRuleNotFound
	case violates(err, codeUniqueViolation, "overtime_rules_name_key"):
		return overtime.ErrRuleNameExists
	case violates(err, codeCheckViolation, "overtime_rules_kind_check"):
		return overtime.ErrUnknownKind
	}
	return fmt.Errorf("failed to %s overtime rule: %w", action, err)
}

// Create implements overtime.RuleRepository.
func (r *overtimeRuleRepository) Create(ctx context.Context, rule overtime.Rule) (overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_rules (id, name, kind, multiplier, min_hours, active, approved)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7)
		RETURNING ` + overtimeRuleColumns

	created, err := scanOvertimeRule(q.QueryRow(ctx, query,
		rule.ID, rule.Name, string(rule.Kind), rule.Multiplier.String(), rule.MinHours.String(), rule.Active, rule.Approved,
	))
	if err != nil {
		return overtime.Rule{}, overtimeRuleWriteError(err, "create")
	}
	return created, nil
}

// GetByID implements overtime.RuleRepository.
func (r *overtimeRuleRepository) GetByID(ctx context.Context, id string) (overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	rule, err := scanOvertimeRule(q.QueryRow(ctx, `SELECT `+overtimeRuleColumns+` FROM overtime_rules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Rule{}, overtime.ErrRuleNotFound
		}
		return overtime.Rule{}, fmt.Errorf("failed to get overtime rule: %w", err)
	}
	return rule, nil
}

// List implements overtime.RuleRepository.
func (r *overtimeRuleRepository) List(ctx context.Context) ([]overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+overtimeRuleColumns+` FROM overtime_rules ORDER BY kind, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime rules: %w", err)
	}
	return collect(rows, scanOvertimeRule)
}

// Update implements overtime.RuleRepository.
func (r *overtimeRuleRepository) Update(ctx context.Context, rule overtime.Rule) (overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_rules
		SET name = $2, multiplier = $3::numeric, min_hours = $4::numeric, active = $5, approved = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + overtimeRuleColumns

	updated, err := scanOvertimeRule(q.QueryRow(ctx, query,
		rule.ID, rule.Name, rule.Multiplier.String(), rule.MinHours.String(), rule.Active, rule.Approved,
	))
	if err != nil {
		return overtime.Rule{}, overtimeRuleWriteError(err, "update")
	}
	return updated, nil
}

// Delete implements overtime.RuleRepository.
func (r *overtimeRuleRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM overtime_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete overtime rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrRuleNotFound
	}
	return nil
}
