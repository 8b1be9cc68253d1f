package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
)

type overtimeServiceImpl struct {
	ruleRepo overtime.RuleRepository
	calendar calendar.Checker
}

func NewOvertimeService(ruleRepo overtime.RuleRepository, checker calendar.Checker) overtime.OvertimeService {
	return &overtimeServiceImpl{
		ruleRepo: ruleRepo,
		calendar: checker,
	}
}

// CreateRule implements overtime.OvertimeService.
func (s *overtimeServiceImpl) CreateRule(ctx context.Context, req overtime.CreateRuleRequest) (overtime.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RuleResponse{}, err
	}

	kind := overtime.Kind(req.Kind)
	params, ok := overtime.ParamsFor(kind)
	if !ok {
		return overtime.RuleResponse{}, overtime.ErrUnknownKind
	}

	id, err := uuid.NewV7()
	if err != nil {
		return overtime.RuleResponse{}, fmt.Errorf("failed to generate overtime rule id: %w", err)
	}

	rule := overtime.Rule{
		ID:         id.String(),
		Name:       req.Name,
		Kind:       kind,
		Multiplier: params.Multiplier,
		MinHours:   params.MinHours,
		Active:     req.Active,
		Approved:   req.Approved,
	}
	if req.Multiplier != nil {
		rule.Multiplier = *req.Multiplier
	}
	if req.MinHours != nil {
		rule.MinHours = *req.MinHours
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return overtime.RuleResponse{}, err
	}
	return overtime.NewRuleResponse(created), nil
}

// GetRule implements overtime.OvertimeService.
func (s *overtimeServiceImpl) GetRule(ctx context.Context, id string) (overtime.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return overtime.RuleResponse{}, err
	}
	return overtime.NewRuleResponse(rule), nil
}

// ListRules implements overtime.OvertimeService.
func (s *overtimeServiceImpl) ListRules(ctx context.Context) ([]overtime.RuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime rules: %w", err)
	}
	out := make([]overtime.RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, overtime.NewRuleResponse(r))
	}
	return out, nil
}

// UpdateRule implements overtime.OvertimeService.
func (s *overtimeServiceImpl) UpdateRule(ctx context.Context, req overtime.UpdateRuleRequest) (overtime.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RuleResponse{}, err
	}

	rule, err := s.ruleRepo.GetByID(ctx, req.ID)
	if err != nil {
		return overtime.RuleResponse{}, err
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Multiplier != nil {
		rule.Multiplier = *req.Multiplier
	}
	if req.MinHours != nil {
		rule.MinHours = *req.MinHours
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	if req.Approved != nil {
		rule.Approved = *req.Approved
	}

	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		return overtime.RuleResponse{}, err
	}
	return overtime.NewRuleResponse(updated), nil
}

// DeleteRule implements overtime.OvertimeService.
func (s *overtimeServiceImpl) DeleteRule(ctx context.Context, id string) error {
	return s.ruleRepo.Delete(ctx, id)
}

// Evaluate implements overtime.OvertimeService.
func (s *overtimeServiceImpl) Evaluate(ctx context.Context, ruleID string, date time.Time, hoursWorked decimal.Decimal) (overtime.Result, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return overtime.Result{}, err
	}
	return Calculate(ctx, rule, date, hoursWorked, s.calendar)
}
