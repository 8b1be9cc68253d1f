package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

type shiftRepository struct {
	s *Store
}

func NewShiftRepository(s *Store) shift.ShiftRepository {
	return &shiftRepository{s: s}
}

func (r *shiftRepository) nameTaken(name, selfID string) bool {
	for _, sh := range r.s.shifts {
		if sh.Name == name && sh.ID != selfID {
			return true
		}
	}
	return false
}

func (r *shiftRepository) Create(_ context.Context, sh shift.Shift) (shift.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(sh.Name, sh.ID) {
		return shift.Shift{}, shift.ErrShiftNameExists
	}
	now := r.s.now()
	sh.CreatedAt, sh.UpdatedAt = now, now
	r.s.shifts[sh.ID] = sh
	return sh, nil
}

func (r *shiftRepository) GetByID(_ context.Context, id string) (shift.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, nil
}

func (r *shiftRepository) List(_ context.Context, filter shift.ShiftFilter) ([]shift.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []shift.Shift
	for _, sh := range sortedValues(r.s.shifts) {
		if filter.ActiveOnly && !sh.Active {
			continue
		}
		if filter.ShiftTypeID != nil && (sh.ShiftTypeID == nil || *sh.ShiftTypeID != *filter.ShiftTypeID) {
			continue
		}
		out = append(out, sh)
	}
	return out, nil
}

func (r *shiftRepository) Update(_ context.Context, sh shift.Shift) (shift.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.shifts[sh.ID]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if r.nameTaken(sh.Name, sh.ID) {
		return shift.Shift{}, shift.ErrShiftNameExists
	}
	sh.CreatedAt = existing.CreatedAt
	sh.UpdatedAt = r.s.now()
	r.s.shifts[sh.ID] = sh
	return sh, nil
}

func (r *shiftRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shifts[id]; !ok {
		return shift.ErrShiftNotFound
	}
	delete(r.s.shifts, id)
	return nil
}

type shiftTypeRepository struct {
	s *Store
}

func NewShiftTypeRepository(s *Store) shift.ShiftTypeRepository {
	return &shiftTypeRepository{s: s}
}

func (r *shiftTypeRepository) nameTaken(name, selfID string) bool {
	for _, st := range r.s.shiftTypes {
		if st.Name == name && st.ID != selfID {
			return true
		}
	}
	return false
}

func (r *shiftTypeRepository) Create(_ context.Context, st shift.ShiftType) (shift.ShiftType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(st.Name, st.ID) {
		return shift.ShiftType{}, shift.ErrShiftTypeNameExists
	}
	now := r.s.now()
	st.CreatedAt, st.UpdatedAt = now, now
	r.s.shiftTypes[st.ID] = st
	return st, nil
}

func (r *shiftTypeRepository) GetByID(_ context.Context, id string) (shift.ShiftType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.shiftTypes[id]
	if !ok {
		return shift.ShiftType{}, shift.ErrShiftTypeNotFound
	}
	return st, nil
}

func (r *shiftTypeRepository) List(_ context.Context) ([]shift.ShiftType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.shiftTypes), nil
}

func (r *shiftTypeRepository) Update(_ context.Context, st shift.ShiftType) (shift.ShiftType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.shiftTypes[st.ID]
	if !ok {
		return shift.ShiftType{}, shift.ErrShiftTypeNotFound
	}
	if r.nameTaken(st.Name, st.ID) {
		return shift.ShiftType{}, shift.ErrShiftTypeNameExists
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = r.s.now()
	r.s.shiftTypes[st.ID] = st
	return st, nil
}

// Delete detaches the type from its shifts, matching ON DELETE SET NULL.
func (r *shiftTypeRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shiftTypes[id]; !ok {
		return shift.ErrShiftTypeNotFound
	}
	delete(r.s.shiftTypes, id)
	for sid, sh := range r.s.shifts {
		if sh.ShiftTypeID != nil && *sh.ShiftTypeID == id {
			sh.ShiftTypeID = nil
			r.s.shifts[sid] = sh
		}
	}
	return nil
}
