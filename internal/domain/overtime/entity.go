package overtime

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindStandard    Kind = "STANDARD"
	KindWeekend     Kind = "WEEKEND"
	KindHoliday     Kind = "HOLIDAY"
	KindPreApproved Kind = "PRE_APPROVED"
)

var KindValues = []string{
	string(KindStandard),
	string(KindWeekend),
	string(KindHoliday),
	string(KindPreApproved),
}

// CalendarGate restricts a rule to days satisfying a calendar predicate.
type CalendarGate int

const (
	GateNone CalendarGate = iota
	GateWeekend
	GateHoliday
)

// Params are the defaults a rule of a given kind starts from.
type Params struct {
	Multiplier decimal.Decimal
	MinHours   decimal.Decimal
	Gate       CalendarGate
}

var kindParams = map[Kind]Params{
	KindStandard:    {Multiplier: decimal.RequireFromString("1.5"), MinHours: decimal.NewFromInt(8), Gate: GateNone},
	KindWeekend:     {Multiplier: decimal.NewFromInt(2), MinHours: decimal.Zero, Gate: GateWeekend},
	KindHoliday:     {Multiplier: decimal.NewFromInt(3), MinHours: decimal.Zero, Gate: GateHoliday},
	KindPreApproved: {Multiplier: decimal.RequireFromString("1.5"), MinHours: decimal.Zero, Gate: GateNone},
}

// ParamsFor returns the default parameters of kind.
func ParamsFor(kind Kind) (Params, bool) {
	p, ok := kindParams[kind]
	return p, ok
}

type Rule struct {
	ID         string
	Name       string
	Kind       Kind
	Multiplier decimal.Decimal
	MinHours   decimal.Decimal
	Active     bool
	Approved   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Effective reports whether the rule takes part in overtime calculation.
func (r Rule) Effective() bool {
	return r.Active && r.Approved
}

// Result is the evaluation of one rule for one worked day.
type Result struct {
	RuleID        string          `json:"rule_id"`
	Kind          Kind            `json:"kind"`
	Date          string          `json:"date"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	OvertimeUnits decimal.Decimal `json:"overtime_units"`
	Applied       bool            `json:"applied"`
	Reason        string          `json:"reason,omitempty"`
}
