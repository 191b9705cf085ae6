package correction

import "errors"

// Correction workflow errors
var (
	ErrBlackoutRange = errors.New("the corrected range falls on a blocked date")
)
