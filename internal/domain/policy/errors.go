package policy

import "errors"

// Policy domain errors
var (
	ErrNoPolicyConfigured = errors.New("no change policy configured for organization")
)
