package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/compliance"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/pkg/metrics"
	"github.com/worklens/timeledger-backend-go/internal/pkg/timeutil"
)

// minimum gap between two completed periods that counts as a break
const breakGapThreshold = time.Minute

type ComplianceEngineImpl struct {
	compliance.RegulationRepository
	workperiod.WorkPeriodRepository
	splitter workperiod.Service
	metrics  *metrics.Metrics
}

func NewComplianceEngine(
	regulationRepo compliance.RegulationRepository,
	periodRepo workperiod.WorkPeriodRepository,
	splitter workperiod.Service,
	m *metrics.Metrics,
) compliance.Engine {
	return &ComplianceEngineImpl{
		RegulationRepository: regulationRepo,
		WorkPeriodRepository: periodRepo,
		splitter:             splitter,
		metrics:              m,
	}
}

// CalculateDeficit implements compliance.Engine. The threshold comparison is
// strictly greater-than: a 540-minute session does not trip a 540-minute
// rule. Downstream payroll behavior depends on this exact boundary.
func (e *ComplianceEngineImpl) CalculateDeficit(sessionMinutes, breaksTakenMinutes int, regulation *compliance.BreakRegulation) compliance.DeficitResult {
	if regulation == nil {
		return compliance.DeficitResult{}
	}

	result := compliance.DeficitResult{
		RegulationID:            regulation.ID,
		RegulationName:          regulation.Name,
		MaxUninterruptedMinutes: regulation.MaxUninterruptedMinutes,
	}

	var applicable *compliance.BreakRule
	for i := range regulation.BreakRules {
		rule := &regulation.BreakRules[i]
		if sessionMinutes <= rule.WorkingMinutesThreshold {
			continue
		}
		if applicable == nil || rule.WorkingMinutesThreshold > applicable.WorkingMinutesThreshold {
			applicable = rule
		}
	}
	if applicable == nil {
		return result
	}

	result.ApplicableRule = applicable
	if deficit := applicable.RequiredBreakMinutes - breaksTakenMinutes; deficit > 0 {
		result.DeficitMinutes = deficit
	}
	return result
}

// BreaksTakenMinutes implements compliance.Engine. Breaks are derived, not
// recorded: any gap longer than one minute between consecutive completed
// periods on the same local calendar day counts.
func (e *ComplianceEngineImpl) BreaksTakenMinutes(ctx context.Context, employeeID string, day time.Time, timezone string) (int, error) {
	loc := timeutil.LoadLocation(timezone)
	local := day.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	periods, err := e.WorkPeriodRepository.ListCompletedBetween(ctx, employeeID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list completed periods: %w", err)
	}

	total := 0
	for i := 1; i < len(periods); i++ {
		prev := periods[i-1]
		if prev.EndTime == nil {
			continue
		}
		gap := periods[i].StartTime.Sub(*prev.EndTime)
		if gap > breakGapThreshold {
			total += int(gap / time.Minute)
		}
	}
	return total, nil
}

// Warn implements compliance.Engine.
func (e *ComplianceEngineImpl) Warn(ctx context.Context, employeeID string, sessionMinutes, breaksTakenMinutes int) (compliance.DeficitResult, error) {
	regulation, err := e.RegulationRepository.GetForEmployee(ctx, employeeID)
	if err != nil {
		return compliance.DeficitResult{}, fmt.Errorf("failed to resolve regulation: %w", err)
	}
	return e.CalculateDeficit(sessionMinutes, breaksTakenMinutes, regulation), nil
}

// EnforceAfterClockOut implements compliance.Engine. This is a best-effort
// side channel: the clock-out has already committed, so every failure here
// is logged and collapsed into a no-adjustment result.
func (e *ComplianceEngineImpl) EnforceAfterClockOut(ctx context.Context, employeeID, workPeriodID string, sessionMinutes, breaksTakenMinutes int) compliance.EnforcementResult {
	noAdjustment := compliance.EnforcementResult{WasAdjusted: false}

	regulation, err := e.RegulationRepository.GetForEmployee(ctx, employeeID)
	if err != nil {
		slog.Error("break enforcement: failed to resolve regulation",
			"employee_id", employeeID, "work_period_id", workPeriodID, "error", err)
		return noAdjustment
	}

	result := e.CalculateDeficit(sessionMinutes, breaksTakenMinutes, regulation)
	if result.DeficitMinutes == 0 || result.ApplicableRule == nil {
		return noAdjustment
	}

	period, err := e.WorkPeriodRepository.GetByID(ctx, workPeriodID)
	if err != nil {
		slog.Error("break enforcement: failed to load work period",
			"employee_id", employeeID, "work_period_id", workPeriodID, "error", err)
		return noAdjustment
	}
	if period.EndTime == nil || period.DurationMinutes == nil {
		slog.Warn("break enforcement: work period is not completed",
			"employee_id", employeeID, "work_period_id", workPeriodID)
		return noAdjustment
	}

	// Insertion offset from the period start: the lesser of the maximum
	// uninterrupted stretch and the applicable rule's threshold.
	offsetMinutes := result.ApplicableRule.WorkingMinutesThreshold
	if regulation.MaxUninterruptedMinutes != nil && *regulation.MaxUninterruptedMinutes < offsetMinutes {
		offsetMinutes = *regulation.MaxUninterruptedMinutes
	}

	splitAt := period.StartTime.Add(time.Duration(offsetMinutes) * time.Minute)
	annotation := workperiod.BreakEnforcement{
		Type:                    workperiod.BreakEnforcementType,
		RegulationID:            regulation.ID,
		BreakInsertedMinutes:    result.DeficitMinutes,
		BreakInsertedAt:         splitAt.UTC(),
		OriginalDurationMinutes: *period.DurationMinutes,
		AdjustedDurationMinutes: *period.DurationMinutes - result.DeficitMinutes,
		RuleApplied: workperiod.AppliedRule{
			WorkingMinutesThreshold: result.ApplicableRule.WorkingMinutesThreshold,
			RequiredBreakMinutes:    result.ApplicableRule.RequiredBreakMinutes,
		},
	}

	if _, err := e.splitter.SplitForBreak(ctx, employeeID, workPeriodID, splitAt, result.DeficitMinutes, annotation); err != nil {
		slog.Error("break enforcement: failed to split work period",
			"employee_id", employeeID, "work_period_id", workPeriodID, "error", err)
		return noAdjustment
	}

	if e.metrics != nil {
		e.metrics.BreaksEnforced.Inc()
	}
	slog.Info("break enforcement: inserted statutory break",
		"employee_id", employeeID,
		"work_period_id", workPeriodID,
		"regulation_id", regulation.ID,
		"break_minutes", result.DeficitMinutes,
		"break_at", splitAt.UTC())

	insertedAt := splitAt.UTC()
	return compliance.EnforcementResult{
		WasAdjusted:          true,
		BreakInsertedMinutes: result.DeficitMinutes,
		BreakInsertedAt:      &insertedAt,
		DeficitMinutes:       result.DeficitMinutes,
	}
}
