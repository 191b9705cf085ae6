package holiday

import (
	"context"
	"time"
)

// ValidationResult reports whether a corrected time range collides with a
// holiday or blackout window.
type ValidationResult struct {
	IsValid     bool
	Reason      string
	HolidayName *string
}

// Validator is the holiday/blackout collaborator consumed by the correction
// workflow.
type Validator interface {
	ValidateRange(ctx context.Context, organizationID string, start, end time.Time) (ValidationResult, error)
}
