package employee

import "context"

// EmployeeRepository is the read-side collaborator for employee records.
// Organization and team administration live outside this service.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
}
