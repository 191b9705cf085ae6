package approval

import "context"

// ApprovalRequestRepository defines data access for approval requests.
type ApprovalRequestRepository interface {
	Create(ctx context.Context, request ApprovalRequest) (ApprovalRequest, error)
	GetByID(ctx context.Context, id string) (ApprovalRequest, error)
	Update(ctx context.Context, request ApprovalRequest) error
	ListPendingForApprover(ctx context.Context, approverID string, page, limit int) ([]ApprovalRequest, int64, error)
}
