package correction

import (
	"github.com/worklens/timeledger-backend-go/internal/pkg/validator"
)

type RequestCorrectionRequest struct {
	WorkPeriodID string  `json:"-"`
	ClockInTime  string  `json:"clock_in_time"`
	ClockOutTime *string `json:"clock_out_time,omitempty"`
	Reason       string  `json:"reason"`
}

func (r RequestCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.WorkPeriodID) {
		errs = append(errs, validator.ValidationError{Field: "work_period_id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidWallClock(r.ClockInTime) {
		errs = append(errs, validator.ValidationError{Field: "clock_in_time", Message: "must be HH:MM"})
	}
	if r.ClockOutTime != nil && !validator.IsValidWallClock(*r.ClockOutTime) {
		errs = append(errs, validator.ValidationError{Field: "clock_out_time", Message: "must be HH:MM"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestCorrectionResponse struct {
	ApprovalID string `json:"approval_id"`
}
