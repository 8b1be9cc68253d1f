// Package memory keeps every repository in process memory. It backs the memory storage driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

type Store struct {
	mu          sync.RWMutex
	holidays    map[string]calendar.Holiday
	shiftTypes  map[string]shift.ShiftType
	shifts      map[string]shift.Shift
	rules       map[string]schedulerule.ScheduleRule
	assignments map[string]assignment.Assignment
	records     map[string]attendance.Record
	lateness    map[string]lateness.Rule
	overtime    map[string]overtime.Rule
	corrections map[string]correction.Request

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		holidays:    make(map[string]calendar.Holiday),
		shiftTypes:  make(map[string]shift.ShiftType),
		shifts:      make(map[string]shift.Shift),
		rules:       make(map[string]schedulerule.ScheduleRule),
		assignments: make(map[string]assignment.Assignment),
		records:     make(map[string]attendance.Record),
		lateness:    make(map[string]lateness.Rule),
		overtime:    make(map[string]overtime.Rule),
		corrections: make(map[string]correction.Request),
		now:         time.Now,
	}
}

// sortedValues returns the map values ordered by key (UUIDv7 keys sort by creation time).
func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

type txMarker struct{}

// Transactor serializes units of work. Writes are not rolled back on error.
type Transactor struct {
	txMu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithinTransaction implements database.Transactor.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	t.txMu.Lock()
	defer t.txMu.Unlock()
	return fn(context.WithValue(ctx, txMarker{}, true))
}
