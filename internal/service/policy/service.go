package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/employee"
	"github.com/worklens/timeledger-backend-go/internal/domain/policy"
	"github.com/worklens/timeledger-backend-go/internal/pkg/timeutil"
)

type PolicyResolverImpl struct {
	policy.AssignmentRepository
	employee.EmployeeRepository
	now func() time.Time
}

func NewPolicyResolver(assignmentRepo policy.AssignmentRepository, employeeRepo employee.EmployeeRepository) policy.Resolver {
	return &PolicyResolverImpl{
		AssignmentRepository: assignmentRepo,
		EmployeeRepository:   employeeRepo,
		now:                  time.Now,
	}
}

// ResolvePolicy implements policy.Resolver. The most specific assignment
// wins: employee override, then team override, then organization default.
func (r *PolicyResolverImpl) ResolvePolicy(ctx context.Context, employeeID string) (policy.ChangePolicy, error) {
	if p, err := r.AssignmentRepository.GetEmployeePolicy(ctx, employeeID); err != nil {
		return policy.ChangePolicy{}, fmt.Errorf("failed to look up employee policy: %w", err)
	} else if p != nil {
		return *p, nil
	}

	emp, err := r.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return policy.ChangePolicy{}, employee.ErrEmployeeNotFound
		}
		return policy.ChangePolicy{}, fmt.Errorf("failed to load employee: %w", err)
	}

	if emp.TeamID != nil {
		if p, err := r.AssignmentRepository.GetTeamPolicy(ctx, *emp.TeamID); err != nil {
			return policy.ChangePolicy{}, fmt.Errorf("failed to look up team policy: %w", err)
		} else if p != nil {
			return *p, nil
		}
	}

	p, err := r.AssignmentRepository.GetOrganizationDefault(ctx, emp.OrganizationID)
	if err != nil {
		return policy.ChangePolicy{}, fmt.Errorf("failed to look up organization default policy: %w", err)
	}
	if p == nil {
		return policy.ChangePolicy{}, policy.ErrNoPolicyConfigured
	}
	return *p, nil
}

// GetEditCapability implements policy.Resolver. Elapsed days are counted on
// local calendar days in the employee's timezone.
func (r *PolicyResolverImpl) GetEditCapability(ctx context.Context, employeeID string, workPeriodEnd time.Time, timezone string) (policy.EditCapability, error) {
	resolved, err := r.ResolvePolicy(ctx, employeeID)
	if err != nil {
		return policy.EditCapability{}, err
	}

	loc := timeutil.LoadLocation(timezone)
	elapsed := timeutil.DaysSince(workPeriodEnd, r.now(), loc)

	switch {
	case elapsed <= resolved.SelfServiceDays:
		return policy.EditCapability{
			Kind:   policy.CapabilityDirect,
			Reason: fmt.Sprintf("within the %d-day self-service window", resolved.SelfServiceDays),
		}, nil
	case elapsed <= resolved.ApprovalDays:
		return policy.EditCapability{Kind: policy.CapabilityApprovalRequired}, nil
	default:
		return policy.EditCapability{
			Kind:     policy.CapabilityForbidden,
			DaysBack: resolved.ApprovalDays,
		}, nil
	}
}

// CheckClockOutNeedsApproval implements policy.Resolver.
func (r *PolicyResolverImpl) CheckClockOutNeedsApproval(ctx context.Context, employeeID string) (bool, error) {
	resolved, err := r.ResolvePolicy(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return resolved.ClockOutNeedsApproval(), nil
}
