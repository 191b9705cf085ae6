package approval

import "time"

const (
	EntityTypeTimeEntry = "time_entry"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ApprovalRequest tracks a pending manager decision on a proposed change.
type ApprovalRequest struct {
	ID          string
	EntityType  string
	EntityID    string
	RequestedBy string
	ApproverID  string
	Status      string
	Reason      string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
