package postgresql

import (
	"context"
	"fmt"

	"github.com/worklens/timeledger-backend-go/internal/domain/policy"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type changePolicyRepository struct {
	db *database.DB
}

func NewChangePolicyRepository(db *database.DB) policy.AssignmentRepository {
	return &changePolicyRepository{db: db}
}

func (r *changePolicyRepository) getByScope(ctx context.Context, scopeColumn, scopeID string) (*policy.ChangePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT cp.id, cp.name, cp.self_service_days, cp.approval_days
		FROM change_policies cp
		JOIN policy_assignments pa ON pa.policy_id = cp.id
		WHERE pa.%s = $1
		ORDER BY pa.created_at DESC
		LIMIT 1
	`, scopeColumn)

	var p policy.ChangePolicy
	err := q.QueryRow(ctx, query, scopeID).Scan(&p.ID, &p.Name, &p.SelfServiceDays, &p.ApprovalDays)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no assignment at this level
		}
		return nil, fmt.Errorf("failed to get change policy: %w", err)
	}

	return &p, nil
}

// GetEmployeePolicy implements policy.AssignmentRepository.
func (r *changePolicyRepository) GetEmployeePolicy(ctx context.Context, employeeID string) (*policy.ChangePolicy, error) {
	return r.getByScope(ctx, "employee_id", employeeID)
}

// GetTeamPolicy implements policy.AssignmentRepository.
func (r *changePolicyRepository) GetTeamPolicy(ctx context.Context, teamID string) (*policy.ChangePolicy, error) {
	return r.getByScope(ctx, "team_id", teamID)
}

// GetOrganizationDefault implements policy.AssignmentRepository.
func (r *changePolicyRepository) GetOrganizationDefault(ctx context.Context, organizationID string) (*policy.ChangePolicy, error) {
	return r.getByScope(ctx, "organization_id", organizationID)
}
