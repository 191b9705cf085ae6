package workperiod

import (
	"time"

	"github.com/worklens/timeledger-backend-go/internal/pkg/validator"
)

type ClockInRequest struct {
	Notes          *string `json:"notes,omitempty"`
	ProjectID      *string `json:"project_id,omitempty"`
	WorkCategoryID *string `json:"work_category_id,omitempty"`
}

func (r ClockInRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ProjectID != nil && !validator.IsValidUUID(*r.ProjectID) {
		errs = append(errs, validator.ValidationError{Field: "project_id", Message: "must be a valid UUID"})
	}
	if r.WorkCategoryID != nil && !validator.IsValidUUID(*r.WorkCategoryID) {
		errs = append(errs, validator.ValidationError{Field: "work_category_id", Message: "must be a valid UUID"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	// Timestamp allows a client to clock out at a past instant (the desktop
	// client uses this to close a session at the moment a break started).
	Timestamp      *string `json:"timestamp,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	ProjectID      *string `json:"project_id,omitempty"`
	WorkCategoryID *string `json:"work_category_id,omitempty"`
}

func (r ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "must be an RFC3339 timestamp"})
		}
	}
	if r.ProjectID != nil && !validator.IsValidUUID(*r.ProjectID) {
		errs = append(errs, validator.ValidationError{Field: "project_id", Message: "must be a valid UUID"})
	}
	if r.WorkCategoryID != nil && !validator.IsValidUUID(*r.WorkCategoryID) {
		errs = append(errs, validator.ValidationError{Field: "work_category_id", Message: "must be a valid UUID"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EditRequest struct {
	ID           string  `json:"-"`
	ClockInTime  string  `json:"clock_in_time"`
	ClockOutTime *string `json:"clock_out_time,omitempty"`
	Reason       *string `json:"reason,omitempty"`
}

func (r EditRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidWallClock(r.ClockInTime) {
		errs = append(errs, validator.ValidationError{Field: "clock_in_time", Message: "must be HH:MM"})
	}
	if r.ClockOutTime != nil && !validator.IsValidWallClock(*r.ClockOutTime) {
		errs = append(errs, validator.ValidationError{Field: "clock_out_time", Message: "must be HH:MM"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SplitRequest struct {
	ID          string  `json:"-"`
	SplitTime   string  `json:"split_time"`
	BeforeNotes *string `json:"before_notes,omitempty"`
	AfterNotes  *string `json:"after_notes,omitempty"`
}

func (r SplitRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidWallClock(r.SplitTime) {
		errs = append(errs, validator.ValidationError{Field: "split_time", Message: "must be HH:MM"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkPeriodResponse struct {
	ID              string             `json:"id"`
	EmployeeID      string             `json:"employee_id"`
	StartTime       string             `json:"start_time"`
	EndTime         *string            `json:"end_time,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	ProjectID       *string            `json:"project_id,omitempty"`
	WorkCategoryID  *string            `json:"work_category_id,omitempty"`
	ApprovalStatus  string             `json:"approval_status"`
	AutoAdjustment  *BreakEnforcement  `json:"auto_adjustment,omitempty"`
	PendingChanges  *PendingChanges    `json:"pending_changes,omitempty"`
}

// ComplianceWarning is attached to clock-out responses when the session ran
// short on statutory breaks. The actual remediation runs on a side channel.
type ComplianceWarning struct {
	DeficitMinutes          int     `json:"deficit_minutes"`
	RegulationName          string  `json:"regulation_name"`
	RequiredBreakMinutes    int     `json:"required_break_minutes"`
	BreaksTakenMinutes      int     `json:"breaks_taken_minutes"`
	MaxUninterruptedMinutes *int    `json:"max_uninterrupted_minutes,omitempty"`
}

type ClockOutResponse struct {
	Period            WorkPeriodResponse `json:"period"`
	RequiresApproval  bool               `json:"requires_approval"`
	ComplianceWarning *ComplianceWarning `json:"compliance_warning,omitempty"`
}

type ClockStatusResponse struct {
	HasEmployee      bool                `json:"has_employee"`
	EmployeeID       *string             `json:"employee_id,omitempty"`
	IsClockedIn      bool                `json:"is_clocked_in"`
	ActiveWorkPeriod *WorkPeriodResponse `json:"active_work_period,omitempty"`
}

type SplitResponse struct {
	First  WorkPeriodResponse `json:"first"`
	Second WorkPeriodResponse `json:"second"`
}

type PeriodFilter struct {
	StartDate *string
	EndDate   *string
	Status    *string
	Page      int
	Limit     int
}

func (f PeriodFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{StatusApproved, StatusPending}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be approved or pending"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPeriodsResponse struct {
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	Periods    []WorkPeriodResponse `json:"periods"`
}

// MapToResponse converts a WorkPeriod entity to its response shape.
func MapToResponse(w WorkPeriod) WorkPeriodResponse {
	resp := WorkPeriodResponse{
		ID:              w.ID,
		EmployeeID:      w.EmployeeID,
		StartTime:       w.StartTime.UTC().Format(time.RFC3339),
		DurationMinutes: w.DurationMinutes,
		ProjectID:       w.ProjectID,
		WorkCategoryID:  w.WorkCategoryID,
		ApprovalStatus:  w.ApprovalStatus,
		AutoAdjustment:  w.AutoAdjustment,
		PendingChanges:  w.PendingChanges,
	}
	if w.EndTime != nil {
		v := w.EndTime.UTC().Format(time.RFC3339)
		resp.EndTime = &v
	}
	return resp
}
