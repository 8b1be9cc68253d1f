package lateness

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

type LatenessService interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	GetRule(ctx context.Context, id string) (RuleResponse, error)
	ListRules(ctx context.Context) ([]RuleResponse, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (RuleResponse, error)
	DeleteRule(ctx context.Context, id string) error

	// Evaluate computes lateness of punchIn against s starting on workDate under the active rule.
	Evaluate(ctx context.Context, s shift.Shift, workDate time.Time, punchIn time.Time) (Result, error)
	Calculate(ctx context.Context, req CalculateRequest) (Result, error)
}
