package compliance

import (
	"context"
	"time"
)

// Engine evaluates completed sessions against break regulations and, when
// configured, remediates deficits by splitting the offending period.
type Engine interface {
	// CalculateDeficit is pure: among the rules whose threshold the session
	// strictly exceeds, the highest tier wins; the deficit is the required
	// break minus whatever was already taken, floored at zero.
	CalculateDeficit(sessionMinutes, breaksTakenMinutes int, regulation *BreakRegulation) DeficitResult

	// BreaksTakenMinutes sums the gaps longer than one minute between
	// consecutive completed periods on the same local calendar day.
	BreaksTakenMinutes(ctx context.Context, employeeID string, day time.Time, timezone string) (int, error)

	// Warn computes the compliance shortfall for a just-completed session
	// without touching any state.
	Warn(ctx context.Context, employeeID string, sessionMinutes, breaksTakenMinutes int) (DeficitResult, error)

	// EnforceAfterClockOut runs the best-effort remediation. All failures
	// are logged and reported as a no-op result.
	EnforceAfterClockOut(ctx context.Context, employeeID, workPeriodID string, sessionMinutes, breaksTakenMinutes int) EnforcementResult
}
