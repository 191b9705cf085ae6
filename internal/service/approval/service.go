package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/approval"
	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
)

type ApprovalServiceImpl struct {
	txRunner database.TxRunner
	approval.ApprovalRequestRepository
	periodRepo workperiod.WorkPeriodRepository
	ledger     ledger.Service
	now        func() time.Time
}

func NewApprovalService(
	txRunner database.TxRunner,
	approvalRepo approval.ApprovalRequestRepository,
	periodRepo workperiod.WorkPeriodRepository,
	ledgerService ledger.Service,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		txRunner:                  txRunner,
		ApprovalRequestRepository: approvalRepo,
		periodRepo:                periodRepo,
		ledger:                    ledgerService,
		now:                       time.Now,
	}
}

// Approve implements approval.Service. Applying a time-entry request
// supersedes the original events with the staged corrections and moves the
// period to the proposed values.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, p session.Principal, requestID string) (approval.ApprovalResponse, error) {
	request, err := s.loadDecidable(ctx, p, requestID)
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if request.EntityType == approval.EntityTypeTimeEntry {
			if err := s.applyPendingChanges(ctx, request); err != nil {
				return err
			}
		}

		resolvedAt := s.now().UTC()
		request.Status = approval.StatusApproved
		request.ResolvedAt = &resolvedAt
		return s.ApprovalRequestRepository.Update(ctx, request)
	})
	if err != nil {
		return approval.ApprovalResponse{}, err
	}
	return approval.MapToResponse(request), nil
}

// Reject implements approval.Service. The staged correction events are
// voided on the ledger so a later chain walk shows what was proposed and
// turned down.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, p session.Principal, req approval.RejectRequest) (approval.ApprovalResponse, error) {
	request, err := s.loadDecidable(ctx, p, req.ID)
	if err != nil {
		return approval.ApprovalResponse{}, err
	}

	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if request.EntityType == approval.EntityTypeTimeEntry {
			if err := s.discardPendingChanges(ctx, request, req.Reason); err != nil {
				return err
			}
		}

		resolvedAt := s.now().UTC()
		request.Status = approval.StatusRejected
		request.ResolvedAt = &resolvedAt
		if req.Reason != "" {
			request.Reason = req.Reason
		}
		return s.ApprovalRequestRepository.Update(ctx, request)
	})
	if err != nil {
		return approval.ApprovalResponse{}, err
	}
	return approval.MapToResponse(request), nil
}

// ListPending implements approval.Service.
func (s *ApprovalServiceImpl) ListPending(ctx context.Context, p session.Principal, page, limit int) (approval.ListApprovalsResponse, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}

	requests, total, err := s.ApprovalRequestRepository.ListPendingForApprover(ctx, p.EmployeeID, page, limit)
	if err != nil {
		return approval.ListApprovalsResponse{}, fmt.Errorf("failed to list approval requests: %w", err)
	}

	responses := make([]approval.ApprovalResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, approval.MapToResponse(request))
	}

	return approval.ListApprovalsResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Approvals:  responses,
	}, nil
}

func (s *ApprovalServiceImpl) loadDecidable(ctx context.Context, p session.Principal, requestID string) (approval.ApprovalRequest, error) {
	request, err := s.ApprovalRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, approval.ErrApprovalNotFound) {
			return approval.ApprovalRequest{}, approval.ErrApprovalNotFound
		}
		return approval.ApprovalRequest{}, fmt.Errorf("failed to get approval request: %w", err)
	}
	if request.ApproverID != p.EmployeeID {
		return approval.ApprovalRequest{}, approval.ErrNotTheApprover
	}
	if request.Status != approval.StatusPending {
		return approval.ApprovalRequest{}, approval.ErrApprovalAlreadyProcessed
	}
	return request, nil
}

func (s *ApprovalServiceImpl) applyPendingChanges(ctx context.Context, request approval.ApprovalRequest) error {
	period, err := s.periodRepo.GetByID(ctx, request.EntityID)
	if err != nil {
		return fmt.Errorf("failed to get work period: %w", err)
	}
	if period.PendingChanges == nil {
		// Nothing staged; a plain clock-out approval only flips the status.
		period.ApprovalStatus = workperiod.StatusApproved
		return s.periodRepo.Update(ctx, period)
	}

	// The originals were superseded when the correction was filed; approval
	// only moves the period's pointers and values onto the staged events.
	pending := *period.PendingChanges

	if pending.ClockInEventID != nil && *pending.ClockInEventID != period.ClockInEventID {
		period.ClockInEventID = *pending.ClockInEventID
	}
	if pending.ClockOutEventID != nil && (period.ClockOutEventID == nil || *pending.ClockOutEventID != *period.ClockOutEventID) {
		period.ClockOutEventID = pending.ClockOutEventID
	}
	if pending.StartTime != nil {
		period.StartTime = *pending.StartTime
	}
	if pending.EndTime != nil {
		period.EndTime = pending.EndTime
	}
	if pending.DurationMinutes != nil {
		period.DurationMinutes = pending.DurationMinutes
	}

	period.ApprovalStatus = workperiod.StatusApproved
	period.PendingChanges = nil
	return s.periodRepo.Update(ctx, period)
}

func (s *ApprovalServiceImpl) discardPendingChanges(ctx context.Context, request approval.ApprovalRequest, reason string) error {
	period, err := s.periodRepo.GetByID(ctx, request.EntityID)
	if err != nil {
		return fmt.Errorf("failed to get work period: %w", err)
	}
	if period.PendingChanges == nil {
		period.ApprovalStatus = workperiod.StatusApproved
		return s.periodRepo.Update(ctx, period)
	}

	note := "correction rejected"
	if reason != "" {
		note = "correction rejected: " + reason
	}

	// Void the staged corrections and restore the originals, which were
	// marked superseded when the correction was filed.
	pending := *period.PendingChanges
	if pending.ClockInEventID != nil && *pending.ClockInEventID != period.ClockInEventID {
		if err := s.ledger.MarkSuperseded(ctx, *pending.ClockInEventID, "", &note); err != nil {
			return err
		}
		if err := s.ledger.ClearSuperseded(ctx, period.ClockInEventID); err != nil {
			return err
		}
	}
	if pending.ClockOutEventID != nil && (period.ClockOutEventID == nil || *pending.ClockOutEventID != *period.ClockOutEventID) {
		if err := s.ledger.MarkSuperseded(ctx, *pending.ClockOutEventID, "", &note); err != nil {
			return err
		}
		if period.ClockOutEventID != nil {
			if err := s.ledger.ClearSuperseded(ctx, *period.ClockOutEventID); err != nil {
				return err
			}
		}
	}

	period.ApprovalStatus = workperiod.StatusApproved
	period.PendingChanges = nil
	return s.periodRepo.Update(ctx, period)
}
