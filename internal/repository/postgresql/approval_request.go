package postgresql

import (
	"context"
	"fmt"

	"github.com/worklens/timeledger-backend-go/internal/domain/approval"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type approvalRequestRepository struct {
	db *database.DB
}

func NewApprovalRequestRepository(db *database.DB) approval.ApprovalRequestRepository {
	return &approvalRequestRepository{db: db}
}

// Create implements approval.ApprovalRequestRepository.
func (r *approvalRequestRepository) Create(ctx context.Context, request approval.ApprovalRequest) (approval.ApprovalRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_requests (
			id, entity_type, entity_id, requested_by, approver_id, status, reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.EntityType,
		request.EntityID,
		request.RequestedBy,
		request.ApproverID,
		request.Status,
		request.Reason,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return approval.ApprovalRequest{}, fmt.Errorf("failed to create approval request: %w", err)
	}

	return request, nil
}

// GetByID implements approval.ApprovalRequestRepository.
func (r *approvalRequestRepository) GetByID(ctx context.Context, id string) (approval.ApprovalRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, entity_type, entity_id, requested_by, approver_id, status, reason,
			   resolved_at, created_at, updated_at
		FROM approval_requests
		WHERE id = $1
	`

	var request approval.ApprovalRequest
	err := q.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.EntityType, &request.EntityID,
		&request.RequestedBy, &request.ApproverID, &request.Status, &request.Reason,
		&request.ResolvedAt, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return approval.ApprovalRequest{}, approval.ErrApprovalNotFound
		}
		return approval.ApprovalRequest{}, fmt.Errorf("failed to get approval request by ID: %w", err)
	}

	return request, nil
}

// Update implements approval.ApprovalRequestRepository.
func (r *approvalRequestRepository) Update(ctx context.Context, request approval.ApprovalRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE approval_requests
		SET status = $2,
			reason = $3,
			resolved_at = $4,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, request.ID, request.Status, request.Reason, request.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to update approval request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrApprovalNotFound
	}

	return nil
}

// ListPendingForApprover implements approval.ApprovalRequestRepository.
func (r *approvalRequestRepository) ListPendingForApprover(ctx context.Context, approverID string, page, limit int) ([]approval.ApprovalRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	countQuery := `SELECT COUNT(*) FROM approval_requests WHERE approver_id = $1 AND status = 'pending'`
	if err := q.QueryRow(ctx, countQuery, approverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count approval requests: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := `
		SELECT id, entity_type, entity_id, requested_by, approver_id, status, reason,
			   resolved_at, created_at, updated_at
		FROM approval_requests
		WHERE approver_id = $1
		  AND status = 'pending'
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, approverID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list approval requests: %w", err)
	}
	defer rows.Close()

	var requests []approval.ApprovalRequest
	for rows.Next() {
		var request approval.ApprovalRequest
		err := rows.Scan(
			&request.ID, &request.EntityType, &request.EntityID,
			&request.RequestedBy, &request.ApproverID, &request.Status, &request.Reason,
			&request.ResolvedAt, &request.CreatedAt, &request.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan approval request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate approval requests: %w", err)
	}

	return requests, total, nil
}
