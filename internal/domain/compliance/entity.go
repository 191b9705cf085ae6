package compliance

import "time"

// BreakRule is one tier of a regulation: once a session exceeds the working
// threshold, the employee must have taken at least the required break.
type BreakRule struct {
	WorkingMinutesThreshold int `json:"working_minutes_threshold"`
	RequiredBreakMinutes    int `json:"required_break_minutes"`
}

// BreakRegulation is a jurisdiction's statutory break rule set. BreakRules
// are ordered by ascending threshold; higher tiers subsume lower ones.
type BreakRegulation struct {
	ID                      string
	OrganizationID          string
	Name                    string
	MaxDailyMinutes         int
	MaxWeeklyMinutes        int
	MaxUninterruptedMinutes *int
	BreakRules              []BreakRule
}

// DeficitResult is the outcome of a deficit calculation.
type DeficitResult struct {
	DeficitMinutes          int
	ApplicableRule          *BreakRule
	RegulationID            string
	RegulationName          string
	MaxUninterruptedMinutes *int
}

// EnforcementResult reports whether a completed session was auto-adjusted.
// Side-channel failures collapse to WasAdjusted=false; they never propagate.
type EnforcementResult struct {
	WasAdjusted          bool
	BreakInsertedMinutes int
	BreakInsertedAt      *time.Time
	DeficitMinutes       int
}
