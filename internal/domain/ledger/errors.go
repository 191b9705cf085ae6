package ledger

import "errors"

// Ledger domain errors
var (
	ErrEventNotFound = errors.New("time event not found")
	ErrChainBroken   = errors.New("event chain integrity violated")
	ErrStorage       = errors.New("ledger storage failure")
)
