package approval

import "errors"

// Approval domain errors
var (
	ErrApprovalNotFound         = errors.New("approval request not found")
	ErrApprovalAlreadyProcessed = errors.New("approval request has already been approved or rejected")
	ErrNotTheApprover           = errors.New("only the assigned approver can decide this request")
)
