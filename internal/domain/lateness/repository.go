package lateness

import "context"

type RuleRepository interface {
	Create(ctx context.Context, rule Rule) (Rule, error)
	GetByID(ctx context.Context, id string) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
	Delete(ctx context.Context, id string) error

	// FindActive returns the active rule, or nil when none is configured.
	FindActive(ctx context.Context) (*Rule, error)
}
