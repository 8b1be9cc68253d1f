package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
)

type overtimeRuleRepository struct {
	s *Store
}

func NewOvertimeRuleRepository(s *Store) overtime.RuleRepository {
	return &overtimeRuleRepository{s: s}
}

func (r *overtimeRuleRepository) nameTaken(name, selfID string) bool {
	for _, rule := range r.s.overtime {
		if rule.Name == name && rule.ID != selfID {
			return true
		}
	}
	return false
}

func (r *overtimeRuleRepository) Create(_ context.Context, rule overtime.Rule) (overtime.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(rule.Name, rule.ID) {
		return overtime.Rule{}, overtime.ErrRuleNameExists
	}
	now := r.s.now()
	rule.CreatedAt, rule.UpdatedAt = now, now
	r.s.overtime[rule.ID] = rule
	return rule, nil
}

func (r *overtimeRuleRepository) GetByID(_ context.Context, id string) (overtime.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.overtime[id]
	if !ok {
		return overtime.Rule{}, overtime.ErrRuleNotFound
	}
	return rule, nil
}

func (r *overtimeRuleRepository) List(_ context.Context) ([]overtime.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.overtime), nil
}

func (r *overtimeRuleRepository) Update(_ context.Context, rule overtime.Rule) (overtime.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.overtime[rule.ID]
	if !ok {
		return overtime.Rule{}, overtime.ErrRuleNotFound
	}
	if r.nameTaken(rule.Name, rule.ID) {
		return overtime.Rule{}, overtime.ErrRuleNameExists
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = r.s.now()
	r.s.overtime[rule.ID] = rule
	return rule, nil
}

func (r *overtimeRuleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.overtime[id]; !ok {
		return overtime.ErrRuleNotFound
	}
	delete(r.s.overtime, id)
	return nil
}
