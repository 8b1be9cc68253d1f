package correction

import "context"

type CorrectionService interface {
	Create(ctx context.Context, req CreateRequest) (RequestResponse, error)
	Submit(ctx context.Context, employeeID string, req SubmitRequest) (RequestResponse, error)
	Get(ctx context.Context, id string) (RequestResponse, error)
	List(ctx context.Context, filter RequestFilter) ([]RequestResponse, error)
	Update(ctx context.Context, req UpdateRequest) (RequestResponse, error)
	Approve(ctx context.Context, req ReviewRequest) (RequestResponse, error)
	Reject(ctx context.Context, req ReviewRequest) (RequestResponse, error)
	Withdraw(ctx context.Context, req WithdrawRequest) error

	EscalatePending(ctx context.Context) (EscalationResult, error)
}

// Topics and event names published while requests move through review.
// Reviewer-facing events go to ReviewersTopic; submitter-facing events use the employee ID as topic.
const (
	ReviewersTopic = "reviewers"

	EventSubmitted = "correction.submitted"
	EventApproved  = "correction.approved"
	EventRejected  = "correction.rejected"
	EventEscalated = "correction.escalated"
)

type Notifier interface {
	Notify(topic, event string, data any)
}
