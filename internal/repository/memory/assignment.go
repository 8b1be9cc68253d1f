package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
)

type assignmentRepository struct {
	s *Store
}

func NewAssignmentRepository(s *Store) assignment.AssignmentRepository {
	return &assignmentRepository{s: s}
}

// conflictsLocked mirrors the exclusion constraint on non-cancelled rows.
func (r *assignmentRepository) conflictsLocked(a assignment.Assignment) bool {
	if a.Status == assignment.StatusCancelled {
		return false
	}
	for _, other := range r.s.assignments {
		if other.ID == a.ID || other.Status == assignment.StatusCancelled || other.Subject != a.Subject {
			continue
		}
		if other.Overlaps(a.StartDate, a.EndDate) {
			return true
		}
	}
	return false
}

func (r *assignmentRepository) Create(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.conflictsLocked(a) {
		return assignment.Assignment{}, assignment.ErrAssignmentConflict
	}
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.assignments[a.ID] = a
	return a, nil
}

func (r *assignmentRepository) GetByID(_ context.Context, id string) (assignment.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return assignment.Assignment{}, assignment.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *assignmentRepository) Update(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.assignments[a.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrAssignmentNotFound
	}
	if r.conflictsLocked(a) {
		return assignment.Assignment{}, assignment.ErrAssignmentConflict
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = r.s.now()
	r.s.assignments[a.ID] = a
	return a, nil
}

func (r *assignmentRepository) UpdateStatus(_ context.Context, id string, from, to assignment.Status) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return false, assignment.ErrAssignmentNotFound
	}
	if a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = r.s.now()
	r.s.assignments[id] = a
	return true, nil
}

func (r *assignmentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.assignments[id]; !ok {
		return assignment.ErrAssignmentNotFound
	}
	delete(r.s.assignments, id)
	return nil
}

func (r *assignmentRepository) DeleteBySubject(_ context.Context, subject assignment.Subject) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := 0
	for id, a := range r.s.assignments {
		if a.Subject == subject {
			delete(r.s.assignments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *assignmentRepository) filter(keep func(assignment.Assignment) bool) []assignment.Assignment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []assignment.Assignment
	for _, a := range sortedValues(r.s.assignments) {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r *assignmentRepository) ListBySubject(_ context.Context, subject assignment.Subject) ([]assignment.Assignment, error) {
	return r.filter(func(a assignment.Assignment) bool { return a.Subject == subject }), nil
}

func (r *assignmentRepository) ListBySubjectType(_ context.Context, subjectType assignment.SubjectType) ([]assignment.Assignment, error) {
	return r.filter(func(a assignment.Assignment) bool { return a.Subject.Type == subjectType }), nil
}

func (r *assignmentRepository) ListByStatus(_ context.Context, statuses ...assignment.Status) ([]assignment.Assignment, error) {
	return r.filter(func(a assignment.Assignment) bool {
		for _, st := range statuses {
			if a.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (r *assignmentRepository) FindOverlapping(_ context.Context, subject assignment.Subject, start time.Time, end *time.Time, excludeIDs ...string) ([]assignment.Assignment, error) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	return r.filter(func(a assignment.Assignment) bool {
		return a.Subject == subject &&
			a.Status != assignment.StatusCancelled &&
			!excluded[a.ID] &&
			a.Overlaps(start, end)
	}), nil
}

func (r *assignmentRepository) ListCovering(_ context.Context, subjects []assignment.Subject, date time.Time) ([]assignment.Assignment, error) {
	return r.filter(func(a assignment.Assignment) bool {
		if a.Status == assignment.StatusCancelled || !a.Covers(date) {
			return false
		}
		for _, s := range subjects {
			if a.Subject == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *assignmentRepository) ListEndedBefore(_ context.Context, day time.Time) ([]assignment.Assignment, error) {
	return r.filter(func(a assignment.Assignment) bool {
		return a.Status != assignment.StatusCancelled && a.EndDate != nil && a.EndDate.Before(day)
	}), nil
}

func (r *assignmentRepository) CountLiveByShiftID(_ context.Context, shiftID string) (int, error) {
	return len(r.filter(func(a assignment.Assignment) bool {
		return a.ShiftID == shiftID && a.Status.IsLive()
	})), nil
}

// LockSubject is a no-op; the Transactor already serializes writers.
func (r *assignmentRepository) LockSubject(_ context.Context, _ assignment.Subject) error {
	return nil
}

// SubjectDirectory is an in-memory employee and organization directory.
// With nothing registered it accepts every subject and places employees nowhere.
type SubjectDirectory struct {
	mu          sync.RWMutex
	subjects    map[assignment.Subject]bool
	departments map[string]string
	positions   map[string]string
}

func NewSubjectDirectory() *SubjectDirectory {
	return &SubjectDirectory{
		subjects:    make(map[assignment.Subject]bool),
		departments: make(map[string]string),
		positions:   make(map[string]string),
	}
}

// AddEmployee registers an employee together with its department and position, either of which may be empty.
func (d *SubjectDirectory) AddEmployee(employeeID, departmentID, positionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subjects[assignment.Subject{Type: assignment.SubjectEmployee, ID: employeeID}] = true
	if departmentID != "" {
		d.subjects[assignment.Subject{Type: assignment.SubjectDepartment, ID: departmentID}] = true
		d.departments[employeeID] = departmentID
	}
	if positionID != "" {
		d.subjects[assignment.Subject{Type: assignment.SubjectPosition, ID: positionID}] = true
		d.positions[employeeID] = positionID
	}
}

func (d *SubjectDirectory) Exists(_ context.Context, subject assignment.Subject) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.subjects) == 0 {
		return true, nil
	}
	return d.subjects[subject], nil
}

func (d *SubjectDirectory) EmployeePlacement(_ context.Context, employeeID string) (*string, *string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var departmentID, positionID *string
	if dep, ok := d.departments[employeeID]; ok {
		departmentID = &dep
	}
	if pos, ok := d.positions[employeeID]; ok {
		positionID = &pos
	}
	return departmentID, positionID, nil
}
