package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

type recordRepository struct {
	s *Store
}

func NewRecordRepository(s *Store) attendance.RecordRepository {
	return &recordRepository{s: s}
}

func copyRecord(r attendance.Record) attendance.Record {
	r.Punches = append([]attendance.Punch(nil), r.Punches...)
	r.ExceptionIDs = append([]string(nil), r.ExceptionIDs...)
	return r
}

func (r *recordRepository) Create(_ context.Context, record attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.records {
		if existing.EmployeeID == record.EmployeeID && existing.WorkDate.Equal(record.WorkDate) {
			return attendance.Record{}, attendance.ErrRecordExists
		}
	}
	now := r.s.now()
	record.CreatedAt, record.UpdatedAt = now, now
	if record.Version == 0 {
		record.Version = 1
	}
	r.s.records[record.ID] = copyRecord(record)
	return record, nil
}

func (r *recordRepository) GetByID(_ context.Context, id string) (attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	record, ok := r.s.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return copyRecord(record), nil
}

func (r *recordRepository) List(_ context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []attendance.Record
	for _, record := range sortedValues(r.s.records) {
		if filter.EmployeeID != nil && record.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && record.WorkDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && record.WorkDate.After(*filter.To) {
			continue
		}
		if filter.Finalized != nil && record.FinalizedForPayroll != *filter.Finalized {
			continue
		}
		out = append(out, copyRecord(record))
	}
	return out, nil
}

func (r *recordRepository) Update(_ context.Context, record attendance.Record, expectedVersion int) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.records[record.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	if existing.Version != expectedVersion {
		return attendance.Record{}, attendance.ErrVersionConflict
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.s.now()
	record.Version = expectedVersion + 1
	r.s.records[record.ID] = copyRecord(record)
	return record, nil
}

// Delete cascades to correction requests filed against the record.
func (r *recordRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.records[id]
	if !ok {
		return attendance.ErrRecordNotFound
	}
	if existing.FinalizedForPayroll {
		return attendance.ErrRecordFinalized
	}
	delete(r.s.records, id)
	for cid, c := range r.s.corrections {
		if c.AttendanceRecordID == id {
			delete(r.s.corrections, cid)
		}
	}
	return nil
}
