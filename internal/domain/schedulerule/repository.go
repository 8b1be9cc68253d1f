package schedulerule

import "context"

type ScheduleRuleRepository interface {
	Create(ctx context.Context, rule ScheduleRule) (ScheduleRule, error)
	GetByID(ctx context.Context, id string) (ScheduleRule, error)
	List(ctx context.Context) ([]ScheduleRule, error)
	Update(ctx context.Context, rule ScheduleRule) (ScheduleRule, error)
	Delete(ctx context.Context, id string) error
}
