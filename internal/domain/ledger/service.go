package ledger

import (
	"context"
	"time"
)

// Service is the append-only event ledger. Appends compute the hash chain
// link; nothing else ever mutates an event besides supersession marking.
type Service interface {
	Append(ctx context.Context, employeeID string, kind EventKind, timestamp time.Time, meta EventMeta) (TimeEvent, error)
	MarkSuperseded(ctx context.Context, eventID string, byEventID string, note *string) error
	ClearSuperseded(ctx context.Context, eventID string) error
	GetEvent(ctx context.Context, id string) (TimeEvent, error)
	ListEvents(ctx context.Context, employeeID string, filter EventFilter) ([]TimeEvent, int64, error)

	// VerifyChain walks the previousHash links from the newest event back to
	// the first and recomputes every hash. Any gap, fork or mismatch marks
	// the chain as tampered.
	VerifyChain(ctx context.Context, employeeID string) (ChainReport, error)
}
