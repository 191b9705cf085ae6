package postgresql

import (
	"context"
	"fmt"

	"github.com/worklens/timeledger-backend-go/internal/domain/ledger"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeEventRepository struct {
	db *database.DB
}

func NewTimeEventRepository(db *database.DB) ledger.TimeEventRepository {
	return &timeEventRepository{db: db}
}

const timeEventColumns = `
	id, employee_id, kind, timestamp, hash, previous_hash,
	created_by, ip_address, device_info, notes, replaces_event_id,
	is_superseded, superseded_by_id, created_at
`

func scanTimeEvent(row pgx.Row) (ledger.TimeEvent, error) {
	var e ledger.TimeEvent
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.Kind, &e.Timestamp, &e.Hash, &e.PreviousHash,
		&e.CreatedBy, &e.IPAddress, &e.DeviceInfo, &e.Notes, &e.ReplacesEventID,
		&e.IsSuperseded, &e.SupersededByID, &e.CreatedAt,
	)
	return e, err
}

// Create implements ledger.TimeEventRepository.
func (r *timeEventRepository) Create(ctx context.Context, event ledger.TimeEvent) (ledger.TimeEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_events (
			id, employee_id, kind, timestamp, hash, previous_hash,
			created_by, ip_address, device_info, notes, replaces_event_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID,
		event.EmployeeID,
		event.Kind,
		event.Timestamp,
		event.Hash,
		event.PreviousHash,
		event.CreatedBy,
		event.IPAddress,
		event.DeviceInfo,
		event.Notes,
		event.ReplacesEventID,
	).Scan(&event.CreatedAt)

	if err != nil {
		return ledger.TimeEvent{}, fmt.Errorf("failed to create time event: %w", err)
	}

	return event, nil
}

// GetByID implements ledger.TimeEventRepository.
func (r *timeEventRepository) GetByID(ctx context.Context, id string) (ledger.TimeEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEventColumns + ` FROM time_events WHERE id = $1`

	event, err := scanTimeEvent(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.TimeEvent{}, ledger.ErrEventNotFound
		}
		return ledger.TimeEvent{}, fmt.Errorf("failed to get time event by ID: %w", err)
	}

	return event, nil
}

// GetChainTip implements ledger.TimeEventRepository. The tip is the most
// recently created event, regardless of its business timestamp.
func (r *timeEventRepository) GetChainTip(ctx context.Context, employeeID string) (*ledger.TimeEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEventColumns + `
		FROM time_events
		WHERE employee_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	event, err := scanTimeEvent(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // empty chain
		}
		return nil, fmt.Errorf("failed to get chain tip: %w", err)
	}

	return &event, nil
}

// MarkSuperseded implements ledger.TimeEventRepository.
func (r *timeEventRepository) MarkSuperseded(ctx context.Context, eventID string, byEventID string, note *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_events
		SET is_superseded = TRUE,
			superseded_by_id = NULLIF($2, ''),
			notes = COALESCE($3, notes)
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, eventID, byEventID, note)
	if err != nil {
		return fmt.Errorf("failed to mark event superseded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrEventNotFound
	}

	return nil
}

// ClearSuperseded implements ledger.TimeEventRepository.
func (r *timeEventRepository) ClearSuperseded(ctx context.Context, eventID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_events
		SET is_superseded = FALSE,
			superseded_by_id = NULL
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to clear supersession: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrEventNotFound
	}

	return nil
}

// ListChain implements ledger.TimeEventRepository.
func (r *timeEventRepository) ListChain(ctx context.Context, employeeID string) ([]ledger.TimeEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEventColumns + `
		FROM time_events
		WHERE employee_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event chain: %w", err)
	}
	defer rows.Close()

	var events []ledger.TimeEvent
	for rows.Next() {
		event, err := scanTimeEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event chain: %w", err)
	}

	return events, nil
}

// ListByEmployee implements ledger.TimeEventRepository.
func (r *timeEventRepository) ListByEmployee(ctx context.Context, employeeID string, filter ledger.EventFilter) ([]ledger.TimeEvent, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.Kind != nil && *filter.Kind != "" {
		baseWhere += fmt.Sprintf(" AND kind = $%d", argIdx)
		args = append(args, *filter.Kind)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND timestamp >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND timestamp < ($%d::date + INTERVAL '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM time_events WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time events: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM time_events
		WHERE %s
		ORDER BY timestamp DESC
		LIMIT $%d OFFSET $%d
	`, timeEventColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time events: %w", err)
	}
	defer rows.Close()

	var events []ledger.TimeEvent
	for rows.Next() {
		event, err := scanTimeEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan time event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate time events: %w", err)
	}

	return events, total, nil
}
