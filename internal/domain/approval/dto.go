package approval

import "time"

type ApprovalResponse struct {
	ID          string  `json:"id"`
	EntityType  string  `json:"entity_type"`
	EntityID    string  `json:"entity_id"`
	RequestedBy string  `json:"requested_by"`
	ApproverID  string  `json:"approver_id"`
	Status      string  `json:"status"`
	Reason      string  `json:"reason"`
	ResolvedAt  *string `json:"resolved_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type ListApprovalsResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Approvals  []ApprovalResponse `json:"approvals"`
}

type RejectRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

// MapToResponse converts an ApprovalRequest entity to its response shape.
func MapToResponse(a ApprovalRequest) ApprovalResponse {
	resp := ApprovalResponse{
		ID:          a.ID,
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		RequestedBy: a.RequestedBy,
		ApproverID:  a.ApproverID,
		Status:      a.Status,
		Reason:      a.Reason,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.ResolvedAt != nil {
		v := a.ResolvedAt.UTC().Format(time.RFC3339)
		resp.ResolvedAt = &v
	}
	return resp
}
