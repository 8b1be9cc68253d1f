package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type PunchType string

const (
	PunchIn  PunchType = "IN"
	PunchOut PunchType = "OUT"
)

type Punch struct {
	Type PunchType `json:"type"`
	Time time.Time `json:"time"`
}

const (
	MissedNoPunches = "No punches"
	MissedInPunch   = "Missing IN"
	MissedOutPunch  = "Missing OUT"
)

// Record is one employee's attendance for one work date.
type Record struct {
	ID                  string
	EmployeeID          string
	WorkDate            time.Time
	Punches             []Punch
	// FirstInAt is the earliest IN as punched, before rounding. Lateness is measured from it.
	FirstInAt           *time.Time
	TotalWorkMinutes    int
	HasMissedPunch      bool
	MissedPunchReason   *string
	ShiftID             *string
	LateMinutes         int
	LatenessDeduction   decimal.Decimal
	ExceptionIDs        []string
	FinalizedForPayroll bool
	FinalizedAt         *time.Time
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FirstIn returns the earliest IN punch, if any.
func (r Record) FirstIn() (time.Time, bool) {
	for _, p := range r.Punches {
		if p.Type == PunchIn {
			return p.Time, true
		}
	}
	return time.Time{}, false
}
