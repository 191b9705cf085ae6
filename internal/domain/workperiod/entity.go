package workperiod

import (
	"time"
)

const (
	StatusApproved = "approved"
	StatusPending  = "pending"
)

// WorkPeriod is the mutable projection of one worked interval, derived from
// a clock-in/clock-out event pair. Edits replace the referenced events via
// supersession; the period row itself is updated in place.
type WorkPeriod struct {
	ID              string
	EmployeeID      string
	ClockInEventID  string
	ClockOutEventID *string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	ProjectID       *string
	WorkCategoryID  *string
	ApprovalStatus  string
	PendingChanges  *PendingChanges
	AutoAdjustment  *BreakEnforcement
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Active reports whether the period is still open.
func (w WorkPeriod) Active() bool {
	return w.EndTime == nil
}

// PendingChanges snapshots a proposed change that awaits manager approval.
// The correction events are already on the ledger; the period applies them
// only once the approval request is granted.
type PendingChanges struct {
	ClockInEventID  *string    `json:"clock_in_event_id,omitempty"`
	ClockOutEventID *string    `json:"clock_out_event_id,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// BreakEnforcement is the auto-adjustment annotation recorded when the
// compliance engine carves a statutory break out of a completed period.
type BreakEnforcement struct {
	Type                    string      `json:"type"`
	RegulationID            string      `json:"regulation_id"`
	BreakInsertedMinutes    int         `json:"break_inserted_minutes"`
	BreakInsertedAt         time.Time   `json:"break_inserted_at"`
	OriginalDurationMinutes int         `json:"original_duration_minutes"`
	AdjustedDurationMinutes int         `json:"adjusted_duration_minutes"`
	RuleApplied             AppliedRule `json:"rule_applied"`
}

// AppliedRule records which break rule tier triggered the adjustment.
type AppliedRule struct {
	WorkingMinutesThreshold int `json:"working_minutes_threshold"`
	RequiredBreakMinutes    int `json:"required_break_minutes"`
}

const BreakEnforcementType = "break_enforcement"
