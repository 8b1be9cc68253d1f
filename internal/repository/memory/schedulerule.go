package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
)

type scheduleRuleRepository struct {
	s *Store
}

func NewScheduleRuleRepository(s *Store) schedulerule.ScheduleRuleRepository {
	return &scheduleRuleRepository{s: s}
}

func copyRule(r schedulerule.ScheduleRule) schedulerule.ScheduleRule {
	r.WorkDays = append([]int(nil), r.WorkDays...)
	return r
}

func (r *scheduleRuleRepository) nameTaken(name, selfID string) bool {
	for _, rule := range r.s.rules {
		if rule.Name == name && rule.ID != selfID {
			return true
		}
	}
	return false
}

func (r *scheduleRuleRepository) Create(_ context.Context, rule schedulerule.ScheduleRule) (schedulerule.ScheduleRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(rule.Name, rule.ID) {
		return schedulerule.ScheduleRule{}, schedulerule.ErrScheduleRuleNameExists
	}
	now := r.s.now()
	rule.CreatedAt, rule.UpdatedAt = now, now
	r.s.rules[rule.ID] = copyRule(rule)
	return rule, nil
}

func (r *scheduleRuleRepository) GetByID(_ context.Context, id string) (schedulerule.ScheduleRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.rules[id]
	if !ok {
		return schedulerule.ScheduleRule{}, schedulerule.ErrScheduleRuleNotFound
	}
	return copyRule(rule), nil
}

func (r *scheduleRuleRepository) List(_ context.Context) ([]schedulerule.ScheduleRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []schedulerule.ScheduleRule
	for _, rule := range sortedValues(r.s.rules) {
		out = append(out, copyRule(rule))
	}
	return out, nil
}

func (r *scheduleRuleRepository) Update(_ context.Context, rule schedulerule.ScheduleRule) (schedulerule.ScheduleRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.rules[rule.ID]
	if !ok {
		return schedulerule.ScheduleRule{}, schedulerule.ErrScheduleRuleNotFound
	}
	if r.nameTaken(rule.Name, rule.ID) {
		return schedulerule.ScheduleRule{}, schedulerule.ErrScheduleRuleNameExists
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = r.s.now()
	r.s.rules[rule.ID] = copyRule(rule)
	return rule, nil
}

// Delete detaches the rule from assignments, matching ON DELETE SET NULL.
func (r *scheduleRuleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rules[id]; !ok {
		return schedulerule.ErrScheduleRuleNotFound
	}
	delete(r.s.rules, id)
	for aid, a := range r.s.assignments {
		if a.ScheduleRuleID != nil && *a.ScheduleRuleID == id {
			a.ScheduleRuleID = nil
			r.s.assignments[aid] = a
		}
	}
	return nil
}
