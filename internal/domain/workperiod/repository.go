package workperiod

import (
	"context"
	"time"
)

// WorkPeriodRepository defines data access for derived work periods.
type WorkPeriodRepository interface {
	// Create creates a new work period
	Create(ctx context.Context, period WorkPeriod) (WorkPeriod, error)

	// GetByID retrieves a work period by id
	GetByID(ctx context.Context, id string) (WorkPeriod, error)

	// GetActive retrieves the single open period for an employee, or nil.
	// Used to enforce the one-active-period invariant.
	GetActive(ctx context.Context, employeeID string) (*WorkPeriod, error)

	// Update updates an existing work period in place
	Update(ctx context.Context, period WorkPeriod) error

	// Delete removes a work period row. Only deleteAsBreak uses this; the
	// audit trail survives on the superseded events.
	Delete(ctx context.Context, id string) error

	// ListCompletedBetween retrieves completed periods whose start falls in
	// [from, to), ordered by start time ascending
	ListCompletedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]WorkPeriod, error)

	// ListByEmployee retrieves periods with filters and pagination
	ListByEmployee(ctx context.Context, employeeID string, filter PeriodFilter) ([]WorkPeriod, int64, error)
}
