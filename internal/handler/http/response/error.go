package response

import (
	"errors"
	"net/http"

	"github.com/worklens/timeledger-backend-go/internal/domain/approval"
	"github.com/worklens/timeledger-backend-go/internal/domain/correction"
	"github.com/worklens/timeledger-backend-go/internal/domain/employee"
	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/domain/policy"
	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Ledger domain errors
	case errors.Is(err, ledger.ErrEventNotFound):
		NotFound(w, "Time event not found")
	case errors.Is(err, ledger.ErrChainBroken):
		Conflict(w, "Event chain integrity check failed")

	// Work period domain errors
	case errors.Is(err, workperiod.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in")
	case errors.Is(err, workperiod.ErrNotClockedIn):
		Conflict(w, "Not clocked in")
	case errors.Is(err, workperiod.ErrWorkPeriodNotFound):
		NotFound(w, "Work period not found")
	case errors.Is(err, workperiod.ErrPeriodStillActive):
		Conflict(w, "Work period is still active")
	case errors.Is(err, workperiod.ErrClockInInFuture):
		BadRequest(w, "Clock-in time cannot be in the future", nil)
	case errors.Is(err, workperiod.ErrClockOutInFuture):
		BadRequest(w, "Clock-out time cannot be in the future", nil)
	case errors.Is(err, workperiod.ErrClockOutNotAfterIn):
		BadRequest(w, "Clock-out time must be after clock-in time", nil)
	case errors.Is(err, workperiod.ErrSplitOutOfRange):
		BadRequest(w, "Split time must fall inside the work period", nil)
	case errors.Is(err, workperiod.ErrEditForbidden):
		Forbidden(w, "Editing this work period is no longer allowed")
	case errors.Is(err, workperiod.ErrApprovalRequired):
		Forbidden(w, "This change requires manager approval")

	// Policy domain errors
	case errors.Is(err, policy.ErrNoPolicyConfigured):
		NotFound(w, "No change policy configured")

	// Approval domain errors
	case errors.Is(err, approval.ErrApprovalNotFound):
		NotFound(w, "Approval request not found")
	case errors.Is(err, approval.ErrApprovalAlreadyProcessed):
		Conflict(w, "Approval request already processed")
	case errors.Is(err, approval.ErrNotTheApprover):
		Forbidden(w, "You are not the approver for this request")

	// Correction domain errors
	case errors.Is(err, correction.ErrBlackoutRange):
		BadRequest(w, "Corrected range overlaps a holiday or blackout window", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNoManagerAssigned):
		BadRequest(w, "No manager assigned to approve this request", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
