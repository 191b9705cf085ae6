package policy

import (
	"context"
	"time"
)

// Resolver resolves the effective change policy for an employee and
// classifies proposed edits against it.
type Resolver interface {
	ResolvePolicy(ctx context.Context, employeeID string) (ChangePolicy, error)
	GetEditCapability(ctx context.Context, employeeID string, workPeriodEnd time.Time, timezone string) (EditCapability, error)

	// CheckClockOutNeedsApproval reports the 0-day policy. Callers must
	// treat a resolution failure as "approval required" rather than
	// blocking the clock-out.
	CheckClockOutNeedsApproval(ctx context.Context, employeeID string) (bool, error)
}
