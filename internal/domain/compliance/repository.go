package compliance

import "context"

// RegulationRepository resolves the break regulation applicable to an
// employee. A nil regulation means no statutory rules apply.
type RegulationRepository interface {
	GetForEmployee(ctx context.Context, employeeID string) (*BreakRegulation, error)
}
