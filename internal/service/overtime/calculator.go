package overtime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// Calculate evaluates rule for a day with hoursWorked.
// Inert rules and unmet calendar gates yield zero units with a reason; an unknown kind is an error.
func Calculate(ctx context.Context, rule overtime.Rule, date time.Time, hoursWorked decimal.Decimal, cal calendar.Checker) (overtime.Result, error) {
	result := overtime.Result{
		RuleID:        rule.ID,
		Kind:          rule.Kind,
		Date:          date.Format(validator.DateLayout),
		HoursWorked:   hoursWorked,
		OvertimeUnits: decimal.Zero,
	}

	params, ok := overtime.ParamsFor(rule.Kind)
	if !ok {
		return result, overtime.ErrUnknownKind
	}

	if !rule.Effective() {
		result.Reason = "rule is not active and approved"
		return result, nil
	}

	switch params.Gate {
	case overtime.GateWeekend:
		if !cal.IsWeekend(date) {
			result.Reason = "date is not a weekend"
			return result, nil
		}
	case overtime.GateHoliday:
		holiday, err := cal.IsHoliday(ctx, date)
		if err != nil {
			return result, err
		}
		if !holiday {
			result.Reason = "date is not a holiday"
			return result, nil
		}
	}

	excess := hoursWorked.Sub(rule.MinHours)
	if excess.IsNegative() {
		excess = decimal.Zero
	}
	result.OvertimeUnits = excess.Mul(rule.Multiplier)
	result.Applied = true
	return result, nil
}
