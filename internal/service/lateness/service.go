package lateness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type latenessServiceImpl struct {
	ruleRepo  lateness.RuleRepository
	shiftRepo shift.ShiftRepository
	loc       *time.Location
}

func NewLatenessService(ruleRepo lateness.RuleRepository, shiftRepo shift.ShiftRepository, loc *time.Location) lateness.LatenessService {
	if loc == nil {
		loc = time.UTC
	}
	return &latenessServiceImpl{
		ruleRepo:  ruleRepo,
		shiftRepo: shiftRepo,
		loc:       loc,
	}
}

// CreateRule implements lateness.LatenessService.
func (s *latenessServiceImpl) CreateRule(ctx context.Context, req lateness.CreateRuleRequest) (lateness.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return lateness.RuleResponse{}, err
	}

	if req.Active {
		if err := s.ensureNoOtherActive(ctx, ""); err != nil {
			return lateness.RuleResponse{}, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return lateness.RuleResponse{}, fmt.Errorf("failed to generate lateness rule id: %w", err)
	}

	created, err := s.ruleRepo.Create(ctx, lateness.Rule{
		ID:                 id.String(),
		Name:               req.Name,
		Description:        req.Description,
		GracePeriodMinutes: req.GracePeriodMinutes,
		DeductionPerMinute: req.DeductionPerMinute,
		Active:             req.Active,
	})
	if err != nil {
		return lateness.RuleResponse{}, err
	}
	return lateness.NewRuleResponse(created), nil
}

// GetRule implements lateness.LatenessService.
func (s *latenessServiceImpl) GetRule(ctx context.Context, id string) (lateness.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return lateness.RuleResponse{}, err
	}
	return lateness.NewRuleResponse(rule), nil
}

// ListRules implements lateness.LatenessService.
func (s *latenessServiceImpl) ListRules(ctx context.Context) ([]lateness.RuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lateness rules: %w", err)
	}
	out := make([]lateness.RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, lateness.NewRuleResponse(r))
	}
	return out, nil
}

// UpdateRule implements lateness.LatenessService.
func (s *latenessServiceImpl) UpdateRule(ctx context.Context, req lateness.UpdateRuleRequest) (lateness.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return lateness.RuleResponse{}, err
	}

	rule, err := s.ruleRepo.GetByID(ctx, req.ID)
	if err != nil {
		return lateness.RuleResponse{}, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.GracePeriodMinutes != nil {
		rule.GracePeriodMinutes = *req.GracePeriodMinutes
	}
	if req.DeductionPerMinute != nil {
		rule.DeductionPerMinute = *req.DeductionPerMinute
	}
	if req.Active != nil {
		if *req.Active && !rule.Active {
			if err := s.ensureNoOtherActive(ctx, rule.ID); err != nil {
				return lateness.RuleResponse{}, err
			}
		}
		rule.Active = *req.Active
	}

	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		return lateness.RuleResponse{}, err
	}
	return lateness.NewRuleResponse(updated), nil
}

// DeleteRule implements lateness.LatenessService.
func (s *latenessServiceImpl) DeleteRule(ctx context.Context, id string) error {
	return s.ruleRepo.Delete(ctx, id)
}

// Evaluate implements lateness.LatenessService.
func (s *latenessServiceImpl) Evaluate(ctx context.Context, sh shift.Shift, workDate time.Time, punchIn time.Time) (lateness.Result, error) {
	rule, err := s.ruleRepo.FindActive(ctx)
	if err != nil {
		return lateness.Result{Deduction: decimal.Zero}, fmt.Errorf("failed to find active lateness rule: %w", err)
	}
	return Calculate(sh.StartOn(workDate, s.loc), sh.GraceInMinutes, rule, punchIn), nil
}

// Calculate implements lateness.LatenessService.
func (s *latenessServiceImpl) Calculate(ctx context.Context, req lateness.CalculateRequest) (lateness.Result, error) {
	if err := req.Validate(); err != nil {
		return lateness.Result{}, err
	}

	sh, err := s.shiftRepo.GetByID(ctx, req.ShiftID)
	if err != nil {
		return lateness.Result{}, err
	}
	workDate, _ := validator.IsValidDate(req.WorkDate)
	punchIn, _ := validator.IsValidDateTime(req.PunchIn)

	return s.Evaluate(ctx, sh, workDate, punchIn)
}

func (s *latenessServiceImpl) ensureNoOtherActive(ctx context.Context, selfID string) error {
	active, err := s.ruleRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to find active lateness rule: %w", err)
	}
	if active != nil && active.ID != selfID {
		return lateness.ErrActiveRuleExists
	}
	return nil
}
