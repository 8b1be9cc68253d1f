package schedulerule

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
)

type scheduleRuleServiceImpl struct {
	ruleRepo schedulerule.ScheduleRuleRepository
}

func NewScheduleRuleService(ruleRepo schedulerule.ScheduleRuleRepository) schedulerule.ScheduleRuleService {
	return &scheduleRuleServiceImpl{ruleRepo: ruleRepo}
}

// Create implements schedulerule.ScheduleRuleService.
func (s *scheduleRuleServiceImpl) Create(ctx context.Context, req schedulerule.CreateScheduleRuleRequest) (schedulerule.ScheduleRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedulerule.ScheduleRuleResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return schedulerule.ScheduleRuleResponse{}, fmt.Errorf("failed to generate schedule rule id: %w", err)
	}

	rule := schedulerule.ScheduleRule{
		ID:       id.String(),
		Name:     req.Name,
		WorkDays: sortedDays(req.WorkDays),
		Active:   true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return schedulerule.ScheduleRuleResponse{}, err
	}
	return schedulerule.NewScheduleRuleResponse(created), nil
}

// Get implements schedulerule.ScheduleRuleService.
func (s *scheduleRuleServiceImpl) Get(ctx context.Context, id string) (schedulerule.ScheduleRuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return schedulerule.ScheduleRuleResponse{}, err
	}
	return schedulerule.NewScheduleRuleResponse(rule), nil
}

// List implements schedulerule.ScheduleRuleService.
func (s *scheduleRuleServiceImpl) List(ctx context.Context) ([]schedulerule.ScheduleRuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule rules: %w", err)
	}
	out := make([]schedulerule.ScheduleRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, schedulerule.NewScheduleRuleResponse(r))
	}
	return out, nil
}

// Update implements schedulerule.ScheduleRuleService.
func (s *scheduleRuleServiceImpl) Update(ctx context.Context, req schedulerule.UpdateScheduleRuleRequest) (schedulerule.ScheduleRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedulerule.ScheduleRuleResponse{}, err
	}

	rule, err := s.ruleRepo.GetByID(ctx, req.ID)
	if err != nil {
		return schedulerule.ScheduleRuleResponse{}, err
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.WorkDays != nil {
		rule.WorkDays = sortedDays(req.WorkDays)
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		return schedulerule.ScheduleRuleResponse{}, err
	}
	return schedulerule.NewScheduleRuleResponse(updated), nil
}

// Delete implements schedulerule.ScheduleRuleService.
func (s *scheduleRuleServiceImpl) Delete(ctx context.Context, id string) error {
	return s.ruleRepo.Delete(ctx, id)
}

func sortedDays(days []int) []int {
	out := append([]int(nil), days...)
	sort.Ints(out)
	return out
}
