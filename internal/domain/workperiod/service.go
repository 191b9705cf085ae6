package workperiod

import (
	"context"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/policy"
	"github.com/worklens/timeledger-backend-go/internal/domain/session"
)

// Service derives and maintains work periods from ledger events. All writes
// go through the event ledger; a failed sub-step rejects the whole
// operation.
type Service interface {
	ClockIn(ctx context.Context, p session.Principal, meta session.ClientMeta, req ClockInRequest) (WorkPeriodResponse, error)
	ClockOut(ctx context.Context, p session.Principal, meta session.ClientMeta, req ClockOutRequest) (ClockOutResponse, error)
	GetStatus(ctx context.Context, p session.Principal) (ClockStatusResponse, error)

	// EditDirect applies a self-service edit. Callers must have classified
	// the edit as direct via the policy resolver; the service re-checks.
	EditDirect(ctx context.Context, p session.Principal, meta session.ClientMeta, req EditRequest) (WorkPeriodResponse, error)

	// EditCapability classifies what the caller may do with a completed
	// period under the resolved change policy.
	EditCapability(ctx context.Context, p session.Principal, periodID string) (policy.EditCapability, error)

	// Split cuts a completed period in two at a local wall-clock time.
	Split(ctx context.Context, p session.Principal, meta session.ClientMeta, req SplitRequest) (SplitResponse, error)

	// SplitForBreak cuts a completed period at an absolute instant leaving
	// an unworked gap of gapMinutes, and records the enforcement annotation
	// on the first segment. Used by the break compliance engine.
	SplitForBreak(ctx context.Context, employeeID, periodID string, splitAt time.Time, gapMinutes int, annotation BreakEnforcement) (SplitResponse, error)

	// DeleteAsBreak converts a completed period into an unrecorded gap.
	DeleteAsBreak(ctx context.Context, p session.Principal, meta session.ClientMeta, periodID string) error

	ListMyPeriods(ctx context.Context, p session.Principal, filter PeriodFilter) (ListPeriodsResponse, error)
}
