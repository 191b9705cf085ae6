package ledger

import (
	"context"
)

// TimeEventRepository defines data access for the append-only event store.
// Events are never deleted; MarkSuperseded is the only post-insert write.
type TimeEventRepository interface {
	// Create inserts a new event (single statement, no partial writes)
	Create(ctx context.Context, event TimeEvent) (TimeEvent, error)

	// GetByID retrieves an event by id
	GetByID(ctx context.Context, id string) (TimeEvent, error)

	// GetChainTip retrieves the most recent event for an employee by
	// creation order, or nil when the chain is empty
	GetChainTip(ctx context.Context, employeeID string) (*TimeEvent, error)

	// MarkSuperseded flips the supersession flag on an existing event
	MarkSuperseded(ctx context.Context, eventID string, byEventID string, note *string) error

	// ClearSuperseded reverts a supersession mark, restoring the event as
	// the live record. Used when a staged correction is rejected.
	ClearSuperseded(ctx context.Context, eventID string) error

	// ListChain retrieves every event for an employee ordered newest first
	// by creation order
	ListChain(ctx context.Context, employeeID string) ([]TimeEvent, error)

	// ListByEmployee retrieves events with filters and pagination
	ListByEmployee(ctx context.Context, employeeID string, filter EventFilter) ([]TimeEvent, int64, error)
}

type EventFilter struct {
	Kind      *string
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}
