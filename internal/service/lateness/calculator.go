package lateness

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
)

// Calculate measures punchIn against shiftStart plus the shift grace and the rule grace.
// Late minutes are floored. Without a rule there is no lateness policy and the result is zero.
func Calculate(shiftStart time.Time, shiftGraceInMinutes int, rule *lateness.Rule, punchIn time.Time) lateness.Result {
	if rule == nil {
		return lateness.Result{Deduction: decimal.Zero}
	}

	id := rule.ID
	graceEnd := shiftStart.Add(time.Duration(shiftGraceInMinutes+rule.GracePeriodMinutes) * time.Minute)
	result := lateness.Result{
		RuleID:      &id,
		GraceEndsAt: &graceEnd,
		Deduction:   decimal.Zero,
	}

	if !punchIn.After(graceEnd) {
		return result
	}

	result.LateMinutes = int(punchIn.Sub(graceEnd) / time.Minute)
	result.Deduction = rule.DeductionPerMinute.Mul(decimal.NewFromInt(int64(result.LateMinutes)))
	return result
}
