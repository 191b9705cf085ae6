package policy

import "context"

// AssignmentRepository looks up policy assignments at each priority level.
// A nil policy means no assignment exists at that level.
type AssignmentRepository interface {
	GetEmployeePolicy(ctx context.Context, employeeID string) (*ChangePolicy, error)
	GetTeamPolicy(ctx context.Context, teamID string) (*ChangePolicy, error)
	GetOrganizationDefault(ctx context.Context, organizationID string) (*ChangePolicy, error)
}
