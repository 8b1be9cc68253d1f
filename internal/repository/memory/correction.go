package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
)

type correctionRepository struct {
	s *Store
}

func NewCorrectionRepository(s *Store) correction.RequestRepository {
	return &correctionRepository{s: s}
}

func copyRequest(r correction.Request) correction.Request {
	if r.ProposedPunches != nil {
		r.ProposedPunches = append([]attendance.Punch{}, r.ProposedPunches...)
	}
	return r
}

func (r *correctionRepository) Create(_ context.Context, req correction.Request) (correction.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.records[req.AttendanceRecordID]; !ok {
		return correction.Request{}, attendance.ErrRecordNotFound
	}
	now := r.s.now()
	req.CreatedAt, req.UpdatedAt = now, now
	if req.Version == 0 {
		req.Version = 1
	}
	r.s.corrections[req.ID] = copyRequest(req)
	return req, nil
}

func (r *correctionRepository) GetByID(_ context.Context, id string) (correction.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.corrections[id]
	if !ok {
		return correction.Request{}, correction.ErrRequestNotFound
	}
	return copyRequest(req), nil
}

func (r *correctionRepository) List(_ context.Context, filter correction.RequestFilter) ([]correction.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []correction.Request
	for _, req := range sortedValues(r.s.corrections) {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.AttendanceRecordID != nil && req.AttendanceRecordID != *filter.AttendanceRecordID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.EscalatedOnly && !req.Escalated {
			continue
		}
		out = append(out, copyRequest(req))
	}
	return out, nil
}

func (r *correctionRepository) Update(_ context.Context, req correction.Request, expectedVersion int) (correction.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.corrections[req.ID]
	if !ok {
		return correction.Request{}, correction.ErrRequestNotFound
	}
	if existing.Version != expectedVersion {
		return correction.Request{}, correction.ErrVersionConflict
	}
	req.CreatedAt = existing.CreatedAt
	req.UpdatedAt = r.s.now()
	req.Version = expectedVersion + 1
	r.s.corrections[req.ID] = copyRequest(req)
	return req, nil
}

func (r *correctionRepository) Delete(_ context.Context, id string, expectedVersion int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.corrections[id]
	switch {
	case !ok:
		return correction.ErrRequestNotFound
	case existing.Status != correction.StatusInReview:
		return correction.ErrNotInReview
	case existing.Version != expectedVersion:
		return correction.ErrVersionConflict
	}
	delete(r.s.corrections, id)
	return nil
}

func (r *correctionRepository) CountInReviewByRecord(_ context.Context, recordID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, req := range r.s.corrections {
		if req.AttendanceRecordID == recordID && req.Status == correction.StatusInReview {
			count++
		}
	}
	return count, nil
}

func (r *correctionRepository) ListEscalationCandidates(_ context.Context, cutoff time.Time) ([]correction.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []correction.Request
	for _, req := range sortedValues(r.s.corrections) {
		if req.Status != correction.StatusInReview || req.Escalated {
			continue
		}
		record, ok := r.s.records[req.AttendanceRecordID]
		if !ok || record.WorkDate.After(cutoff) {
			continue
		}
		out = append(out, copyRequest(req))
	}
	return out, nil
}

func (r *correctionRepository) MarkEscalated(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.corrections[id]
	if !ok {
		return false, correction.ErrRequestNotFound
	}
	if req.Escalated || req.Status != correction.StatusInReview {
		return false, nil
	}
	req.Escalated = true
	req.EscalatedAt = &at
	req.UpdatedAt = r.s.now()
	r.s.corrections[id] = req
	return true, nil
}
