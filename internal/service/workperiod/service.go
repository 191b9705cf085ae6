package workperiod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/compliance"
	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/domain/policy"
	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/domain/settings"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/worklens/timeledger-backend-go/internal/pkg/metrics"
	"github.com/worklens/timeledger-backend-go/internal/pkg/timeutil"
	"github.com/worklens/timeledger-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

func validationError(field string, err error) error {
	return validator.ValidationErrors{{Field: field, Message: err.Error()}}
}

type WorkPeriodServiceImpl struct {
	txRunner database.TxRunner
	workperiod.WorkPeriodRepository
	ledger   ledger.Service
	policy   policy.Resolver
	settings settings.Provider
	engine   compliance.Engine
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewWorkPeriodService(
	txRunner database.TxRunner,
	periodRepo workperiod.WorkPeriodRepository,
	ledgerService ledger.Service,
	policyResolver policy.Resolver,
	settingsProvider settings.Provider,
	m *metrics.Metrics,
) *WorkPeriodServiceImpl {
	return &WorkPeriodServiceImpl{
		txRunner:             txRunner,
		WorkPeriodRepository: periodRepo,
		ledger:               ledgerService,
		policy:               policyResolver,
		settings:             settingsProvider,
		metrics:              m,
		now:                  time.Now,
	}
}

// AttachComplianceEngine wires the break enforcement side channel. The
// engine splits periods through this service, so it is constructed after it.
func (s *WorkPeriodServiceImpl) AttachComplianceEngine(engine compliance.Engine) {
	s.engine = engine
}

// ClockIn implements workperiod.Service.
func (s *WorkPeriodServiceImpl) ClockIn(ctx context.Context, p session.Principal, meta session.ClientMeta, req workperiod.ClockInRequest) (workperiod.WorkPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return workperiod.WorkPeriodResponse{}, err
	}

	active, err := s.WorkPeriodRepository.GetActive(ctx, p.EmployeeID)
	if err != nil {
		return workperiod.WorkPeriodResponse{}, fmt.Errorf("failed to check active period: %w", err)
	}
	if active != nil {
		return workperiod.WorkPeriodResponse{}, workperiod.ErrAlreadyClockedIn
	}

	nowUTC := s.now().UTC()

	var period workperiod.WorkPeriod
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		event, err := s.ledger.Append(ctx, p.EmployeeID, ledger.KindClockIn, nowUTC, ledger.EventMeta{
			CreatedBy:  p.UserID,
			IPAddress:  meta.IPAddress,
			DeviceInfo: meta.DeviceInfo,
			Notes:      req.Notes,
		})
		if err != nil {
			return err
		}

		period, err = s.WorkPeriodRepository.Create(ctx, workperiod.WorkPeriod{
			ID:             uuid.NewString(),
			EmployeeID:     p.EmployeeID,
			ClockInEventID: event.ID,
			StartTime:      nowUTC,
			ProjectID:      req.ProjectID,
			WorkCategoryID: req.WorkCategoryID,
			ApprovalStatus: workperiod.StatusApproved,
		})
		return err
	})
	if err != nil {
		return workperiod.WorkPeriodResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.ClockIns.Inc()
	}
	return workperiod.MapToResponse(period), nil
}

// ClockOut implements workperiod.Service.
func (s *WorkPeriodServiceImpl) ClockOut(ctx context.Context, p session.Principal, meta session.ClientMeta, req workperiod.ClockOutRequest) (workperiod.ClockOutResponse, error) {
	if err := req.Validate(); err != nil {
		return workperiod.ClockOutResponse{}, err
	}

	active, err := s.WorkPeriodRepository.GetActive(ctx, p.EmployeeID)
	if err != nil {
		return workperiod.ClockOutResponse{}, fmt.Errorf("failed to check active period: %w", err)
	}
	if active == nil {
		return workperiod.ClockOutResponse{}, workperiod.ErrNotClockedIn
	}

	nowUTC := s.now().UTC()
	outTime := nowUTC
	if req.Timestamp != nil {
		parsed, ok := validator.IsValidDateTime(*req.Timestamp)
		if !ok {
			return workperiod.ClockOutResponse{}, validationError("timestamp", errors.New("must be an RFC3339 timestamp"))
		}
		outTime = parsed.UTC()
	}
	if outTime.After(nowUTC) {
		return workperiod.ClockOutResponse{}, workperiod.ErrClockOutInFuture
	}
	if !outTime.After(active.StartTime) {
		return workperiod.ClockOutResponse{}, workperiod.ErrClockOutNotAfterIn
	}

	duration := timeutil.DurationMinutes(active.StartTime, outTime)

	// A policy lookup failure must never block the clock-out; fall back to
	// requiring approval and let a manager settle it.
	needsApproval, err := s.policy.CheckClockOutNeedsApproval(ctx, p.EmployeeID)
	if err != nil {
		slog.Error("clock-out: policy resolution failed, falling back to approval",
			"employee_id", p.EmployeeID, "error", err)
		needsApproval = true
	}

	period := *active
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		event, err := s.ledger.Append(ctx, p.EmployeeID, ledger.KindClockOut, outTime, ledger.EventMeta{
			CreatedBy:  p.UserID,
			IPAddress:  meta.IPAddress,
			DeviceInfo: meta.DeviceInfo,
			Notes:      req.Notes,
		})
		if err != nil {
			return err
		}

		period.ClockOutEventID = &event.ID
		period.EndTime = &outTime
		period.DurationMinutes = &duration
		if req.ProjectID != nil {
			period.ProjectID = req.ProjectID
		}
		if req.WorkCategoryID != nil {
			period.WorkCategoryID = req.WorkCategoryID
		}
		if needsApproval {
			period.ApprovalStatus = workperiod.StatusPending
			period.PendingChanges = &workperiod.PendingChanges{
				ClockOutEventID: &event.ID,
				EndTime:         &outTime,
				DurationMinutes: &duration,
			}
		}
		return s.WorkPeriodRepository.Update(ctx, period)
	})
	if err != nil {
		return workperiod.ClockOutResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.ClockOuts.Inc()
	}

	resp := workperiod.ClockOutResponse{
		Period:           workperiod.MapToResponse(period),
		RequiresApproval: needsApproval,
	}
	resp.ComplianceWarning = s.complianceWarning(ctx, p, period.ID, outTime, duration)

	return resp, nil
}

// complianceWarning computes the deficit for the response payload and
// submits the enforcement task. Nothing in here may fail the clock-out.
func (s *WorkPeriodServiceImpl) complianceWarning(ctx context.Context, p session.Principal, periodID string, outTime time.Time, sessionMinutes int) *workperiod.ComplianceWarning {
	if s.engine == nil {
		return nil
	}

	timezone := s.timezoneFor(ctx, p.UserID)
	breaksTaken, err := s.engine.BreaksTakenMinutes(ctx, p.EmployeeID, outTime, timezone)
	if err != nil {
		slog.Error("clock-out: failed to compute breaks taken",
			"employee_id", p.EmployeeID, "error", err)
		return nil
	}

	result, err := s.engine.Warn(ctx, p.EmployeeID, sessionMinutes, breaksTaken)
	if err != nil {
		slog.Error("clock-out: failed to compute break deficit",
			"employee_id", p.EmployeeID, "error", err)
		return nil
	}

	if result.DeficitMinutes > 0 {
		// Fire-and-forget: enforcement runs detached from the response
		// path and carries its own error channel (the log).
		enforceCtx := context.WithoutCancel(ctx)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("break enforcement panicked", "employee_id", p.EmployeeID, "panic", r)
				}
			}()
			s.engine.EnforceAfterClockOut(enforceCtx, p.EmployeeID, periodID, sessionMinutes, breaksTaken)
		}()
	}

	if result.DeficitMinutes == 0 || result.ApplicableRule == nil {
		return nil
	}
	return &workperiod.ComplianceWarning{
		DeficitMinutes:          result.DeficitMinutes,
		RegulationName:          result.RegulationName,
		RequiredBreakMinutes:    result.ApplicableRule.RequiredBreakMinutes,
		BreaksTakenMinutes:      breaksTaken,
		MaxUninterruptedMinutes: result.MaxUninterruptedMinutes,
	}
}

// GetStatus implements workperiod.Service.
func (s *WorkPeriodServiceImpl) GetStatus(ctx context.Context, p session.Principal) (workperiod.ClockStatusResponse, error) {
	if p.EmployeeID == "" {
		return workperiod.ClockStatusResponse{HasEmployee: false}, nil
	}

	active, err := s.WorkPeriodRepository.GetActive(ctx, p.EmployeeID)
	if err != nil {
		return workperiod.ClockStatusResponse{}, fmt.Errorf("failed to check active period: %w", err)
	}

	resp := workperiod.ClockStatusResponse{
		HasEmployee: true,
		EmployeeID:  &p.EmployeeID,
		IsClockedIn: active != nil,
	}
	if active != nil {
		mapped := workperiod.MapToResponse(*active)
		resp.ActiveWorkPeriod = &mapped
	}
	return resp, nil
}

// EditDirect implements workperiod.Service.
func (s *WorkPeriodServiceImpl) EditDirect(ctx context.Context, p session.Principal, meta session.ClientMeta, req workperiod.EditRequest) (workperiod.WorkPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return workperiod.WorkPeriodResponse{}, err
	}

	period, err := s.WorkPeriodRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, workperiod.ErrWorkPeriodNotFound) {
			return workperiod.WorkPeriodResponse{}, workperiod.ErrWorkPeriodNotFound
		}
		return workperiod.WorkPeriodResponse{}, fmt.Errorf("failed to get work period: %w", err)
	}
	if period.EmployeeID != p.EmployeeID {
		return workperiod.WorkPeriodResponse{}, workperiod.ErrWorkPeriodNotFound
	}
	if period.EndTime == nil || period.ClockOutEventID == nil {
		return workperiod.WorkPeriodResponse{}, workperiod.ErrPeriodStillActive
	}

	timezone := s.timezoneFor(ctx, p.UserID)
	capability, err := s.policy.GetEditCapability(ctx, period.EmployeeID, *period.EndTime, timezone)
	if err != nil {
		return workperiod.WorkPeriodResponse{}, fmt.Errorf("failed to resolve edit capability: %w", err)
	}
	switch capability.Kind {
	case policy.CapabilityDirect:
	case policy.CapabilityApprovalRequired:
		return workperiod.WorkPeriodResponse{}, workperiod.ErrApprovalRequired
	default:
		return workperiod.WorkPeriodResponse{}, workperiod.ErrEditForbidden
	}

	inEvent, err := s.ledger.GetEvent(ctx, period.ClockInEventID)
	if err != nil {
		return workperiod.WorkPeriodResponse{}, fmt.Errorf("failed to load clock-in event: %w", err)
	}
	outEvent, err := s.ledger.GetEvent(ctx, *period.ClockOutEventID)
	if err != nil {
		return workperiod.WorkPeriodResponse{}, fmt.Errorf("failed to load clock-out event: %w", err)
	}

	loc := timeutil.LoadLocation(timezone)
	nowUTC := s.now().UTC()

	inHour, inMinute, err := timeutil.ParseWallClock(req.ClockInTime)
	if err != nil {
		return workperiod.WorkPeriodResponse{}, validationError("clock_in_time", err)
	}
	newStart := timeutil.CombineWallClock(inEvent.Timestamp, inHour, inMinute, loc)
	if newStart.After(nowUTC) {
		return workperiod.WorkPeriodResponse{}, workperiod.ErrClockInInFuture
	}

	newEnd := *period.EndTime
	if req.ClockOutTime != nil {
		outHour, outMinute, err := timeutil.ParseWallClock(*req.ClockOutTime)
		if err != nil {
			return workperiod.WorkPeriodResponse{}, validationError("clock_out_time", err)
		}
		newEnd = timeutil.CombineWallClock(outEvent.Timestamp, outHour, outMinute, loc)
		if newEnd.After(nowUTC) {
			return workperiod.WorkPeriodResponse{}, workperiod.ErrClockOutInFuture
		}
	}
	if !newEnd.After(newStart) {
		return workperiod.WorkPeriodResponse{}, workperiod.ErrClockOutNotAfterIn
	}

	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		correctionIn, err := s.ledger.Append(ctx, period.EmployeeID, ledger.KindCorrection, newStart, ledger.EventMeta{
			CreatedBy:       p.UserID,
			IPAddress:       meta.IPAddress,
			DeviceInfo:      meta.DeviceInfo,
			Notes:           req.Reason,
			ReplacesEventID: &inEvent.ID,
		})
		if err != nil {
			return err
		}
		if err := s.ledger.MarkSuperseded(ctx, inEvent.ID, correctionIn.ID, req.Reason); err != nil {
			return err
		}
		period.ClockInEventID = correctionIn.ID
		period.StartTime = newStart

		if req.ClockOutTime != nil {
			correctionOut, err := s.ledger.Append(ctx, period.EmployeeID, ledger.KindCorrection, newEnd, ledger.EventMeta{
				CreatedBy:       p.UserID,
				IPAddress:       meta.IPAddress,
				DeviceInfo:      meta.DeviceInfo,
				Notes:           req.Reason,
				ReplacesEventID: &outEvent.ID,
			})
			if err != nil {
				return err
			}
			if err := s.ledger.MarkSuperseded(ctx, outEvent.ID, correctionOut.ID, req.Reason); err != nil {
				return err
			}
			period.ClockOutEventID = &correctionOut.ID
			period.EndTime = &newEnd
		}

		duration := timeutil.DurationMinutes(period.StartTime, *period.EndTime)
		period.DurationMinutes = &duration
		return s.WorkPeriodRepository.Update(ctx, period)
	})
	if err != nil {
		return workperiod.WorkPeriodResponse{}, err
	}

	return workperiod.MapToResponse(period), nil
}

// EditCapability implements workperiod.Service.
func (s *WorkPeriodServiceImpl) EditCapability(ctx context.Context, p session.Principal, periodID string) (policy.EditCapability, error) {
	period, err := s.WorkPeriodRepository.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, workperiod.ErrWorkPeriodNotFound) {
			return policy.EditCapability{}, workperiod.ErrWorkPeriodNotFound
		}
		return policy.EditCapability{}, fmt.Errorf("failed to get work period: %w", err)
	}
	if period.EmployeeID != p.EmployeeID {
		return policy.EditCapability{}, workperiod.ErrWorkPeriodNotFound
	}
	if period.EndTime == nil {
		return policy.EditCapability{}, workperiod.ErrPeriodStillActive
	}

	timezone := s.timezoneFor(ctx, p.UserID)
	capability, err := s.policy.GetEditCapability(ctx, period.EmployeeID, *period.EndTime, timezone)
	if err != nil {
		return policy.EditCapability{}, fmt.Errorf("failed to resolve edit capability: %w", err)
	}
	return capability, nil
}

// Split implements workperiod.Service.
func (s *WorkPeriodServiceImpl) Split(ctx context.Context, p session.Principal, meta session.ClientMeta, req workperiod.SplitRequest) (workperiod.SplitResponse, error) {
	if err := req.Validate(); err != nil {
		return workperiod.SplitResponse{}, err
	}

	period, err := s.WorkPeriodRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, workperiod.ErrWorkPeriodNotFound) {
			return workperiod.SplitResponse{}, workperiod.ErrWorkPeriodNotFound
		}
		return workperiod.SplitResponse{}, fmt.Errorf("failed to get work period: %w", err)
	}
	if period.EmployeeID != p.EmployeeID {
		return workperiod.SplitResponse{}, workperiod.ErrWorkPeriodNotFound
	}
	if period.EndTime == nil || period.ClockOutEventID == nil {
		return workperiod.SplitResponse{}, workperiod.ErrPeriodStillActive
	}

	timezone := s.timezoneFor(ctx, p.UserID)
	loc := timeutil.LoadLocation(timezone)

	hour, minute, err := timeutil.ParseWallClock(req.SplitTime)
	if err != nil {
		return workperiod.SplitResponse{}, validationError("split_time", err)
	}
	splitAt := timeutil.CombineWallClock(period.StartTime, hour, minute, loc)

	return s.splitAt(ctx, period, splitAt, 0, splitParams{
		actor:       p.UserID,
		meta:        meta,
		beforeNotes: req.BeforeNotes,
		afterNotes:  req.AfterNotes,
	})
}

// SplitForBreak implements workperiod.Service. Invoked by the compliance
// engine with an absolute split instant and a gap to leave unworked.
func (s *WorkPeriodServiceImpl) SplitForBreak(ctx context.Context, employeeID, periodID string, splitAt time.Time, gapMinutes int, annotation workperiod.BreakEnforcement) (workperiod.SplitResponse, error) {
	period, err := s.WorkPeriodRepository.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, workperiod.ErrWorkPeriodNotFound) {
			return workperiod.SplitResponse{}, workperiod.ErrWorkPeriodNotFound
		}
		return workperiod.SplitResponse{}, fmt.Errorf("failed to get work period: %w", err)
	}
	if period.EmployeeID != employeeID {
		return workperiod.SplitResponse{}, workperiod.ErrWorkPeriodNotFound
	}
	if period.EndTime == nil || period.ClockOutEventID == nil {
		return workperiod.SplitResponse{}, workperiod.ErrPeriodStillActive
	}

	note := "automatic break insertion: " + annotation.RegulationID
	return s.splitAt(ctx, period, splitAt, gapMinutes, splitParams{
		actor:       "system",
		beforeNotes: &note,
		annotation:  &annotation,
	})
}

type splitParams struct {
	actor       string
	meta        session.ClientMeta
	beforeNotes *string
	afterNotes  *string
	annotation  *workperiod.BreakEnforcement
}

// splitAt cuts a completed period at splitAt, leaving gapMinutes of
// unrecorded time before the second segment. The original clock-out event
// is superseded by a synthetic clock-out at the split instant; the second
// segment reuses the original clock-out event reference.
func (s *WorkPeriodServiceImpl) splitAt(ctx context.Context, period workperiod.WorkPeriod, splitAt time.Time, gapMinutes int, params splitParams) (workperiod.SplitResponse, error) {
	originalEnd := *period.EndTime
	secondStart := splitAt.Add(time.Duration(gapMinutes) * time.Minute)
	if !splitAt.After(period.StartTime) || !originalEnd.After(secondStart) {
		return workperiod.SplitResponse{}, workperiod.ErrSplitOutOfRange
	}

	originalOutEventID := *period.ClockOutEventID

	var second workperiod.WorkPeriod
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		syntheticOut, err := s.ledger.Append(ctx, period.EmployeeID, ledger.KindClockOut, splitAt, ledger.EventMeta{
			CreatedBy:       params.actor,
			IPAddress:       params.meta.IPAddress,
			DeviceInfo:      params.meta.DeviceInfo,
			Notes:           params.beforeNotes,
			ReplacesEventID: &originalOutEventID,
		})
		if err != nil {
			return err
		}
		if err := s.ledger.MarkSuperseded(ctx, originalOutEventID, syntheticOut.ID, params.beforeNotes); err != nil {
			return err
		}

		syntheticIn, err := s.ledger.Append(ctx, period.EmployeeID, ledger.KindClockIn, secondStart, ledger.EventMeta{
			CreatedBy:  params.actor,
			IPAddress:  params.meta.IPAddress,
			DeviceInfo: params.meta.DeviceInfo,
			Notes:      params.afterNotes,
		})
		if err != nil {
			return err
		}

		firstDuration := timeutil.DurationMinutes(period.StartTime, splitAt)
		period.ClockOutEventID = &syntheticOut.ID
		period.EndTime = &splitAt
		period.DurationMinutes = &firstDuration
		if params.annotation != nil {
			period.AutoAdjustment = params.annotation
		}
		if err := s.WorkPeriodRepository.Update(ctx, period); err != nil {
			return err
		}

		secondDuration := timeutil.DurationMinutes(secondStart, originalEnd)
		second, err = s.WorkPeriodRepository.Create(ctx, workperiod.WorkPeriod{
			ID:              uuid.NewString(),
			EmployeeID:      period.EmployeeID,
			ClockInEventID:  syntheticIn.ID,
			ClockOutEventID: &originalOutEventID,
			StartTime:       secondStart,
			EndTime:         &originalEnd,
			DurationMinutes: &secondDuration,
			ProjectID:       period.ProjectID,
			WorkCategoryID:  period.WorkCategoryID,
			ApprovalStatus:  workperiod.StatusApproved,
		})
		return err
	})
	if err != nil {
		return workperiod.SplitResponse{}, err
	}

	return workperiod.SplitResponse{
		First:  workperiod.MapToResponse(period),
		Second: workperiod.MapToResponse(second),
	}, nil
}

// DeleteAsBreak implements workperiod.Service. The one exception to
// "periods are never deleted": the worked interval becomes an unrecorded
// gap, with the audit trail kept on the superseded events.
func (s *WorkPeriodServiceImpl) DeleteAsBreak(ctx context.Context, p session.Principal, meta session.ClientMeta, periodID string) error {
	period, err := s.WorkPeriodRepository.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, workperiod.ErrWorkPeriodNotFound) {
			return workperiod.ErrWorkPeriodNotFound
		}
		return fmt.Errorf("failed to get work period: %w", err)
	}
	if period.EmployeeID != p.EmployeeID {
		return workperiod.ErrWorkPeriodNotFound
	}
	if period.EndTime == nil || period.ClockOutEventID == nil {
		return workperiod.ErrPeriodStillActive
	}

	note := "work period converted to break by " + p.UserID
	return s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.MarkSuperseded(ctx, period.ClockInEventID, "", &note); err != nil {
			return err
		}
		if err := s.ledger.MarkSuperseded(ctx, *period.ClockOutEventID, "", &note); err != nil {
			return err
		}
		return s.WorkPeriodRepository.Delete(ctx, period.ID)
	})
}

// ListMyPeriods implements workperiod.Service.
func (s *WorkPeriodServiceImpl) ListMyPeriods(ctx context.Context, p session.Principal, filter workperiod.PeriodFilter) (workperiod.ListPeriodsResponse, error) {
	if err := filter.Validate(); err != nil {
		return workperiod.ListPeriodsResponse{}, err
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}

	periods, total, err := s.WorkPeriodRepository.ListByEmployee(ctx, p.EmployeeID, filter)
	if err != nil {
		return workperiod.ListPeriodsResponse{}, fmt.Errorf("failed to list work periods: %w", err)
	}

	responses := make([]workperiod.WorkPeriodResponse, 0, len(periods))
	for _, period := range periods {
		responses = append(responses, workperiod.MapToResponse(period))
	}

	return workperiod.ListPeriodsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Periods:    responses,
	}, nil
}

func (s *WorkPeriodServiceImpl) timezoneFor(ctx context.Context, userID string) string {
	timezone, err := s.settings.GetTimezone(ctx, userID)
	if err != nil {
		slog.Warn("failed to resolve timezone, defaulting to UTC", "user_id", userID, "error", err)
		return "UTC"
	}
	return timezone
}
