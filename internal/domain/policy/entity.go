package policy

// ChangePolicy governs who may edit past time and how. Resolution order is
// employee override > team override > organization default.
type ChangePolicy struct {
	ID              string
	Name            string
	SelfServiceDays int
	ApprovalDays    int
}

// ClockOutNeedsApproval reports the "0-day policy": with no self-service
// window, every clock-out must be approved before it counts as final.
func (p ChangePolicy) ClockOutNeedsApproval() bool {
	return p.SelfServiceDays == 0
}

type CapabilityKind string

const (
	CapabilityDirect           CapabilityKind = "direct"
	CapabilityApprovalRequired CapabilityKind = "approval_required"
	CapabilityForbidden        CapabilityKind = "forbidden"
)

// EditCapability classifies a proposed edit of a completed work period.
// DaysBack is populated only for the forbidden variant and reports the
// policy's approval window for messaging.
type EditCapability struct {
	Kind     CapabilityKind `json:"kind"`
	Reason   string         `json:"reason,omitempty"`
	DaysBack int            `json:"days_back,omitempty"`
}
