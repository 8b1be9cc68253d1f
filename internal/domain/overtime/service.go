package overtime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OvertimeService interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	GetRule(ctx context.Context, id string) (RuleResponse, error)
	ListRules(ctx context.Context) ([]RuleResponse, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (RuleResponse, error)
	DeleteRule(ctx context.Context, id string) error

	Evaluate(ctx context.Context, ruleID string, date time.Time, hoursWorked decimal.Decimal) (Result, error)
}
