package settings

import "context"

// Provider supplies per-user settings. Implementations must return "UTC"
// when no timezone is stored for the user.
type Provider interface {
	GetTimezone(ctx context.Context, userID string) (string, error)
}
