package approval

import (
	"context"

	"github.com/worklens/timeledger-backend-go/internal/domain/session"
)

// Service decides pending approval requests. Approving a time-entry request
// applies the period's pending changes; rejecting voids the correction
// events that were staged on the ledger.
type Service interface {
	Approve(ctx context.Context, p session.Principal, requestID string) (ApprovalResponse, error)
	Reject(ctx context.Context, p session.Principal, req RejectRequest) (ApprovalResponse, error)
	ListPending(ctx context.Context, p session.Principal, page, limit int) (ListApprovalsResponse, error)
}
