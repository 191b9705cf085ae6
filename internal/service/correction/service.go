package correction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/correction"
	"github.com/worklens/timeledger-backend-go/internal/domain/approval"
	"github.com/worklens/timeledger-backend-go/internal/domain/employee"
	"github.com/worklens/timeledger-backend-go/internal/domain/holiday"
	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/domain/settings"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/worklens/timeledger-backend-go/internal/pkg/email"
	"github.com/worklens/timeledger-backend-go/internal/pkg/metrics"
	"github.com/worklens/timeledger-backend-go/internal/pkg/timeutil"
	"github.com/google/uuid"
)

type CorrectionServiceImpl struct {
	txRunner     database.TxRunner
	periodRepo   workperiod.WorkPeriodRepository
	ledger       ledger.Service
	employeeRepo employee.EmployeeRepository
	approvalRepo approval.ApprovalRequestRepository
	holidays     holiday.Validator
	settings     settings.Provider
	email        email.EmailService
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewCorrectionService(
	txRunner database.TxRunner,
	periodRepo workperiod.WorkPeriodRepository,
	ledgerService ledger.Service,
	employeeRepo employee.EmployeeRepository,
	approvalRepo approval.ApprovalRequestRepository,
	holidays holiday.Validator,
	settingsProvider settings.Provider,
	emailService email.EmailService,
	m *metrics.Metrics,
) correction.Service {
	return &CorrectionServiceImpl{
		txRunner:     txRunner,
		periodRepo:   periodRepo,
		ledger:       ledgerService,
		employeeRepo: employeeRepo,
		approvalRepo: approvalRepo,
		holidays:     holidays,
		settings:     settingsProvider,
		email:        emailService,
		metrics:      m,
		now:          time.Now,
	}
}

// RequestCorrection implements correction.Service. The period is marked
// pending with the proposed values staged alongside the correction events;
// nothing is applied until the manager decides.
func (s *CorrectionServiceImpl) RequestCorrection(ctx context.Context, p session.Principal, meta session.ClientMeta, req correction.RequestCorrectionRequest) (correction.RequestCorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.RequestCorrectionResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, p.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return correction.RequestCorrectionResponse{}, employee.ErrEmployeeNotFound
		}
		return correction.RequestCorrectionResponse{}, fmt.Errorf("failed to load employee: %w", err)
	}
	if emp.ManagerID == nil {
		return correction.RequestCorrectionResponse{}, employee.ErrNoManagerAssigned
	}

	period, err := s.periodRepo.GetByID(ctx, req.WorkPeriodID)
	if err != nil {
		if errors.Is(err, workperiod.ErrWorkPeriodNotFound) {
			return correction.RequestCorrectionResponse{}, workperiod.ErrWorkPeriodNotFound
		}
		return correction.RequestCorrectionResponse{}, fmt.Errorf("failed to get work period: %w", err)
	}
	if period.EmployeeID != p.EmployeeID {
		return correction.RequestCorrectionResponse{}, workperiod.ErrWorkPeriodNotFound
	}
	if period.EndTime == nil || period.ClockOutEventID == nil {
		return correction.RequestCorrectionResponse{}, workperiod.ErrPeriodStillActive
	}

	inEvent, err := s.ledger.GetEvent(ctx, period.ClockInEventID)
	if err != nil {
		return correction.RequestCorrectionResponse{}, fmt.Errorf("failed to load clock-in event: %w", err)
	}
	outEvent, err := s.ledger.GetEvent(ctx, *period.ClockOutEventID)
	if err != nil {
		return correction.RequestCorrectionResponse{}, fmt.Errorf("failed to load clock-out event: %w", err)
	}

	timezone, err := s.settings.GetTimezone(ctx, p.UserID)
	if err != nil {
		slog.Warn("failed to resolve timezone, defaulting to UTC", "user_id", p.UserID, "error", err)
		timezone = "UTC"
	}
	loc := timeutil.LoadLocation(timezone)
	nowUTC := s.now().UTC()

	inHour, inMinute, err := timeutil.ParseWallClock(req.ClockInTime)
	if err != nil {
		return correction.RequestCorrectionResponse{}, fmt.Errorf("invalid clock-in time: %w", err)
	}
	newStart := timeutil.CombineWallClock(inEvent.Timestamp, inHour, inMinute, loc)
	if newStart.After(nowUTC) {
		return correction.RequestCorrectionResponse{}, workperiod.ErrClockInInFuture
	}

	newEnd := *period.EndTime
	if req.ClockOutTime != nil {
		outHour, outMinute, err := timeutil.ParseWallClock(*req.ClockOutTime)
		if err != nil {
			return correction.RequestCorrectionResponse{}, fmt.Errorf("invalid clock-out time: %w", err)
		}
		newEnd = timeutil.CombineWallClock(outEvent.Timestamp, outHour, outMinute, loc)
		if newEnd.After(nowUTC) {
			return correction.RequestCorrectionResponse{}, workperiod.ErrClockOutInFuture
		}
	}
	if !newEnd.After(newStart) {
		return correction.RequestCorrectionResponse{}, workperiod.ErrClockOutNotAfterIn
	}

	check, err := s.holidays.ValidateRange(ctx, emp.OrganizationID, newStart, newEnd)
	if err != nil {
		return correction.RequestCorrectionResponse{}, fmt.Errorf("failed to validate against blackout ranges: %w", err)
	}
	if !check.IsValid {
		return correction.RequestCorrectionResponse{}, fmt.Errorf("%w: %s", correction.ErrBlackoutRange, check.Reason)
	}

	reason := req.Reason
	var request approval.ApprovalRequest
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		correctionIn, err := s.ledger.Append(ctx, p.EmployeeID, ledger.KindCorrection, newStart, ledger.EventMeta{
			CreatedBy:       p.UserID,
			IPAddress:       meta.IPAddress,
			DeviceInfo:      meta.DeviceInfo,
			Notes:           &reason,
			ReplacesEventID: &inEvent.ID,
		})
		if err != nil {
			return err
		}
		// Originals are superseded the moment the correction is filed. The
		// period keeps its current values until the manager approves; a
		// rejection clears the mark again.
		if err := s.ledger.MarkSuperseded(ctx, inEvent.ID, correctionIn.ID, &reason); err != nil {
			return err
		}

		pending := workperiod.PendingChanges{
			ClockInEventID: &correctionIn.ID,
			StartTime:      &newStart,
		}
		if req.ClockOutTime != nil {
			correctionOut, err := s.ledger.Append(ctx, p.EmployeeID, ledger.KindCorrection, newEnd, ledger.EventMeta{
				CreatedBy:       p.UserID,
				IPAddress:       meta.IPAddress,
				DeviceInfo:      meta.DeviceInfo,
				Notes:           &reason,
				ReplacesEventID: &outEvent.ID,
			})
			if err != nil {
				return err
			}
			if err := s.ledger.MarkSuperseded(ctx, outEvent.ID, correctionOut.ID, &reason); err != nil {
				return err
			}
			pending.ClockOutEventID = &correctionOut.ID
			pending.EndTime = &newEnd
		}
		duration := timeutil.DurationMinutes(newStart, newEnd)
		pending.DurationMinutes = &duration

		period.ApprovalStatus = workperiod.StatusPending
		period.PendingChanges = &pending
		if err := s.periodRepo.Update(ctx, period); err != nil {
			return err
		}

		request, err = s.approvalRepo.Create(ctx, approval.ApprovalRequest{
			ID:          uuid.NewString(),
			EntityType:  approval.EntityTypeTimeEntry,
			EntityID:    period.ID,
			RequestedBy: p.EmployeeID,
			ApproverID:  *emp.ManagerID,
			Status:      approval.StatusPending,
			Reason:      reason,
		})
		return err
	})
	if err != nil {
		return correction.RequestCorrectionResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.CorrectionsRequested.Inc()
	}

	s.notifyManager(ctx, emp, period, req)

	return correction.RequestCorrectionResponse{ApprovalID: request.ID}, nil
}

// notifyManager sends the approval email. Failures are logged only; the
// correction request already committed.
func (s *CorrectionServiceImpl) notifyManager(ctx context.Context, emp employee.Employee, period workperiod.WorkPeriod, req correction.RequestCorrectionRequest) {
	if s.email == nil || emp.ManagerID == nil {
		return
	}

	manager, err := s.employeeRepo.GetByID(ctx, *emp.ManagerID)
	if err != nil {
		slog.Error("correction notification: failed to load manager",
			"manager_id", *emp.ManagerID, "error", err)
		return
	}

	periodDate := period.StartTime.UTC().Format("2006-01-02")
	if err := s.email.SendCorrectionRequested(manager.Email, manager.FullName, emp.FullName, periodDate, req.ClockInTime, req.ClockOutTime, req.Reason); err != nil {
		slog.Error("correction notification: failed to send email",
			"manager_id", manager.ID, "error", err)
	}
}
