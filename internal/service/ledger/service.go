package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/google/uuid"
)

type LedgerServiceImpl struct {
	ledger.TimeEventRepository
}

func NewLedgerService(eventRepo ledger.TimeEventRepository) ledger.Service {
	return &LedgerServiceImpl{
		TimeEventRepository: eventRepo,
	}
}

// Append implements ledger.Service. The previous hash is taken from the
// chain tip by creation order, not by business timestamp; corrections that
// reference past timestamps still land at the tip.
func (l *LedgerServiceImpl) Append(ctx context.Context, employeeID string, kind ledger.EventKind, timestamp time.Time, meta ledger.EventMeta) (ledger.TimeEvent, error) {
	tip, err := l.TimeEventRepository.GetChainTip(ctx, employeeID)
	if err != nil {
		return ledger.TimeEvent{}, fmt.Errorf("failed to read chain tip: %w", errors.Join(ledger.ErrStorage, err))
	}

	var previousHash *string
	if tip != nil {
		h := tip.Hash
		previousHash = &h
	}

	event := ledger.TimeEvent{
		ID:              uuid.NewString(),
		EmployeeID:      employeeID,
		Kind:            kind,
		Timestamp:       timestamp.UTC(),
		Hash:            ledger.ComputeEventHash(employeeID, kind, timestamp, previousHash),
		PreviousHash:    previousHash,
		CreatedBy:       meta.CreatedBy,
		IPAddress:       meta.IPAddress,
		DeviceInfo:      meta.DeviceInfo,
		Notes:           meta.Notes,
		ReplacesEventID: meta.ReplacesEventID,
	}

	created, err := l.TimeEventRepository.Create(ctx, event)
	if err != nil {
		return ledger.TimeEvent{}, fmt.Errorf("failed to append event: %w", errors.Join(ledger.ErrStorage, err))
	}

	return created, nil
}

// MarkSuperseded implements ledger.Service.
func (l *LedgerServiceImpl) MarkSuperseded(ctx context.Context, eventID string, byEventID string, note *string) error {
	if err := l.TimeEventRepository.MarkSuperseded(ctx, eventID, byEventID, note); err != nil {
		if errors.Is(err, ledger.ErrEventNotFound) {
			return ledger.ErrEventNotFound
		}
		return fmt.Errorf("failed to mark event superseded: %w", errors.Join(ledger.ErrStorage, err))
	}
	return nil
}

// ClearSuperseded implements ledger.Service.
func (l *LedgerServiceImpl) ClearSuperseded(ctx context.Context, eventID string) error {
	if err := l.TimeEventRepository.ClearSuperseded(ctx, eventID); err != nil {
		if errors.Is(err, ledger.ErrEventNotFound) {
			return ledger.ErrEventNotFound
		}
		return fmt.Errorf("failed to clear supersession: %w", errors.Join(ledger.ErrStorage, err))
	}
	return nil
}

// GetEvent implements ledger.Service.
func (l *LedgerServiceImpl) GetEvent(ctx context.Context, id string) (ledger.TimeEvent, error) {
	event, err := l.TimeEventRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrEventNotFound) {
			return ledger.TimeEvent{}, ledger.ErrEventNotFound
		}
		return ledger.TimeEvent{}, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents implements ledger.Service.
func (l *LedgerServiceImpl) ListEvents(ctx context.Context, employeeID string, filter ledger.EventFilter) ([]ledger.TimeEvent, int64, error) {
	events, total, err := l.TimeEventRepository.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

// VerifyChain implements ledger.Service. Events arrive newest first in
// creation order, so each event's previousHash must equal the next event's
// hash, with a single nil sentinel at the very first event.
func (l *LedgerServiceImpl) VerifyChain(ctx context.Context, employeeID string) (ledger.ChainReport, error) {
	events, err := l.TimeEventRepository.ListChain(ctx, employeeID)
	if err != nil {
		return ledger.ChainReport{}, fmt.Errorf("failed to load event chain: %w", err)
	}

	report := ledger.ChainReport{Intact: true, Length: len(events)}
	for i, event := range events {
		if ledger.ComputeEventHash(event.EmployeeID, event.Kind, event.Timestamp, event.PreviousHash) != event.Hash {
			return brokenAt(event.ID, len(events)), nil
		}

		last := i == len(events)-1
		if last {
			if event.PreviousHash != nil {
				return brokenAt(event.ID, len(events)), nil
			}
			continue
		}

		if event.PreviousHash == nil || *event.PreviousHash != events[i+1].Hash {
			return brokenAt(event.ID, len(events)), nil
		}
	}

	return report, nil
}

func brokenAt(eventID string, length int) ledger.ChainReport {
	return ledger.ChainReport{Intact: false, Length: length, BrokenAtEventID: &eventID}
}
