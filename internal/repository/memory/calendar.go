package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
)

type holidayRepository struct {
	s *Store
}

func NewHolidayRepository(s *Store) calendar.HolidayRepository {
	return &holidayRepository{s: s}
}

func (r *holidayRepository) Create(_ context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	h.CreatedAt, h.UpdatedAt = now, now
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *holidayRepository) GetByID(_ context.Context, id string) (calendar.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.holidays[id]
	if !ok {
		return calendar.Holiday{}, calendar.ErrHolidayNotFound
	}
	return h, nil
}

func (r *holidayRepository) List(_ context.Context, filter calendar.HolidayFilter) ([]calendar.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []calendar.Holiday
	for _, h := range sortedValues(r.s.holidays) {
		if filter.ActiveOnly && !h.Active {
			continue
		}
		if filter.Year != nil && h.StartDate.Year() != *filter.Year && h.LastDay().Year() != *filter.Year {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *holidayRepository) Update(_ context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.holidays[h.ID]
	if !ok {
		return calendar.Holiday{}, calendar.ErrHolidayNotFound
	}
	h.CreatedAt = existing.CreatedAt
	h.UpdatedAt = r.s.now()
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *holidayRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.holidays[id]; !ok {
		return calendar.ErrHolidayNotFound
	}
	delete(r.s.holidays, id)
	return nil
}

func (r *holidayRepository) ListActiveBetween(_ context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []calendar.Holiday
	for _, h := range sortedValues(r.s.holidays) {
		if !h.Active {
			continue
		}
		if h.StartDate.After(to) || h.LastDay().Before(from) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}
