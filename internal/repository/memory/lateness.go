package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
)

type latenessRuleRepository struct {
	s *Store
}

func NewLatenessRuleRepository(s *Store) lateness.RuleRepository {
	return &latenessRuleRepository{s: s}
}

// otherActiveLocked mirrors the single-active unique index.
func (r *latenessRuleRepository) otherActiveLocked(rule lateness.Rule) bool {
	if !rule.Active {
		return false
	}
	for _, other := range r.s.lateness {
		if other.Active && other.ID != rule.ID {
			return true
		}
	}
	return false
}

func (r *latenessRuleRepository) Create(_ context.Context, rule lateness.Rule) (lateness.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.otherActiveLocked(rule) {
		return lateness.Rule{}, lateness.ErrActiveRuleExists
	}
	now := r.s.now()
	rule.CreatedAt, rule.UpdatedAt = now, now
	r.s.lateness[rule.ID] = rule
	return rule, nil
}

func (r *latenessRuleRepository) GetByID(_ context.Context, id string) (lateness.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rule, ok := r.s.lateness[id]
	if !ok {
		return lateness.Rule{}, lateness.ErrRuleNotFound
	}
	return rule, nil
}

func (r *latenessRuleRepository) List(_ context.Context) ([]lateness.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.lateness), nil
}

func (r *latenessRuleRepository) Update(_ context.Context, rule lateness.Rule) (lateness.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.lateness[rule.ID]
	if !ok {
		return lateness.Rule{}, lateness.ErrRuleNotFound
	}
	if r.otherActiveLocked(rule) {
		return lateness.Rule{}, lateness.ErrActiveRuleExists
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = r.s.now()
	r.s.lateness[rule.ID] = rule
	return rule, nil
}

func (r *latenessRuleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.lateness[id]; !ok {
		return lateness.ErrRuleNotFound
	}
	delete(r.s.lateness, id)
	return nil
}

func (r *latenessRuleRepository) FindActive(_ context.Context) (*lateness.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rule := range sortedValues(r.s.lateness) {
		if rule.Active {
			return &rule, nil
		}
	}
	return nil, nil
}
