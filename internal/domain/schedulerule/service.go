package schedulerule

import "context"

type ScheduleRuleService interface {
	Create(ctx context.Context, req CreateScheduleRuleRequest) (ScheduleRuleResponse, error)
	Get(ctx context.Context, id string) (ScheduleRuleResponse, error)
	List(ctx context.Context) ([]ScheduleRuleResponse, error)
	Update(ctx context.Context, req UpdateScheduleRuleRequest) (ScheduleRuleResponse, error)
	Delete(ctx context.Context, id string) error
}
