package workperiod

import "errors"

// Work period domain errors
var (
	// Clock state errors
	ErrAlreadyClockedIn = errors.New("you are already clocked in")
	ErrNotClockedIn     = errors.New("you are not clocked in")

	// Edit errors
	ErrWorkPeriodNotFound = errors.New("work period not found")
	ErrPeriodStillActive  = errors.New("work period is still active")
	ErrClockInInFuture    = errors.New("clock-in time cannot be in the future")
	ErrClockOutInFuture   = errors.New("clock-out time cannot be in the future")
	ErrClockOutNotAfterIn = errors.New("clock-out time must be after clock-in time")
	ErrSplitOutOfRange    = errors.New("split time must fall strictly between start and end")

	// Policy gate errors
	ErrEditForbidden    = errors.New("this work period can no longer be edited")
	ErrApprovalRequired = errors.New("this change requires manager approval")
)
