package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/workperiod"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workPeriodRepository struct {
	db *database.DB
}

func NewWorkPeriodRepository(db *database.DB) workperiod.WorkPeriodRepository {
	return &workPeriodRepository{db: db}
}

const workPeriodColumns = `
	id, employee_id, clock_in_event_id, clock_out_event_id,
	start_time, end_time, duration_minutes, project_id, work_category_id,
	approval_status, pending_changes, auto_adjustment, created_at, updated_at
`

func scanWorkPeriod(row pgx.Row) (workperiod.WorkPeriod, error) {
	var w workperiod.WorkPeriod
	var pendingChanges, autoAdjustment []byte

	err := row.Scan(
		&w.ID, &w.EmployeeID, &w.ClockInEventID, &w.ClockOutEventID,
		&w.StartTime, &w.EndTime, &w.DurationMinutes, &w.ProjectID, &w.WorkCategoryID,
		&w.ApprovalStatus, &pendingChanges, &autoAdjustment, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return workperiod.WorkPeriod{}, err
	}

	if len(pendingChanges) > 0 {
		var pc workperiod.PendingChanges
		if err := json.Unmarshal(pendingChanges, &pc); err != nil {
			return workperiod.WorkPeriod{}, fmt.Errorf("failed to decode pending_changes: %w", err)
		}
		w.PendingChanges = &pc
	}
	if len(autoAdjustment) > 0 {
		var adj workperiod.BreakEnforcement
		if err := json.Unmarshal(autoAdjustment, &adj); err != nil {
			return workperiod.WorkPeriod{}, fmt.Errorf("failed to decode auto_adjustment: %w", err)
		}
		w.AutoAdjustment = &adj
	}

	return w, nil
}

func encodeJSONB(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Create implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) Create(ctx context.Context, period workperiod.WorkPeriod) (workperiod.WorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	var pendingChanges, autoAdjustment []byte
	var err error
	if period.PendingChanges != nil {
		if pendingChanges, err = encodeJSONB(period.PendingChanges); err != nil {
			return workperiod.WorkPeriod{}, fmt.Errorf("failed to encode pending_changes: %w", err)
		}
	}
	if period.AutoAdjustment != nil {
		if autoAdjustment, err = encodeJSONB(period.AutoAdjustment); err != nil {
			return workperiod.WorkPeriod{}, fmt.Errorf("failed to encode auto_adjustment: %w", err)
		}
	}

	query := `
		INSERT INTO work_periods (
			id, employee_id, clock_in_event_id, clock_out_event_id,
			start_time, end_time, duration_minutes, project_id, work_category_id,
			approval_status, pending_changes, auto_adjustment
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		period.ID,
		period.EmployeeID,
		period.ClockInEventID,
		period.ClockOutEventID,
		period.StartTime,
		period.EndTime,
		period.DurationMinutes,
		period.ProjectID,
		period.WorkCategoryID,
		period.ApprovalStatus,
		pendingChanges,
		autoAdjustment,
	).Scan(&period.CreatedAt, &period.UpdatedAt)

	if err != nil {
		return workperiod.WorkPeriod{}, fmt.Errorf("failed to create work period: %w", err)
	}

	return period, nil
}

// GetByID implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) GetByID(ctx context.Context, id string) (workperiod.WorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workPeriodColumns + ` FROM work_periods WHERE id = $1`

	period, err := scanWorkPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return workperiod.WorkPeriod{}, workperiod.ErrWorkPeriodNotFound
		}
		return workperiod.WorkPeriod{}, fmt.Errorf("failed to get work period by ID: %w", err)
	}

	return period, nil
}

// GetActive implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) GetActive(ctx context.Context, employeeID string) (*workperiod.WorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workPeriodColumns + `
		FROM work_periods
		WHERE employee_id = $1
		  AND end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`

	period, err := scanWorkPeriod(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // not clocked in
		}
		return nil, fmt.Errorf("failed to get active work period: %w", err)
	}

	return &period, nil
}

// Update implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) Update(ctx context.Context, period workperiod.WorkPeriod) error {
	q := GetQuerier(ctx, r.db)

	var pendingChanges, autoAdjustment []byte
	var err error
	if period.PendingChanges != nil {
		if pendingChanges, err = encodeJSONB(period.PendingChanges); err != nil {
			return fmt.Errorf("failed to encode pending_changes: %w", err)
		}
	}
	if period.AutoAdjustment != nil {
		if autoAdjustment, err = encodeJSONB(period.AutoAdjustment); err != nil {
			return fmt.Errorf("failed to encode auto_adjustment: %w", err)
		}
	}

	query := `
		UPDATE work_periods
		SET clock_in_event_id = $2,
			clock_out_event_id = $3,
			start_time = $4,
			end_time = $5,
			duration_minutes = $6,
			project_id = $7,
			work_category_id = $8,
			approval_status = $9,
			pending_changes = $10,
			auto_adjustment = $11,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		period.ID,
		period.ClockInEventID,
		period.ClockOutEventID,
		period.StartTime,
		period.EndTime,
		period.DurationMinutes,
		period.ProjectID,
		period.WorkCategoryID,
		period.ApprovalStatus,
		pendingChanges,
		autoAdjustment,
	)
	if err != nil {
		return fmt.Errorf("failed to update work period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workperiod.ErrWorkPeriodNotFound
	}

	return nil
}

// Delete implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workperiod.ErrWorkPeriodNotFound
	}

	return nil
}

// ListCompletedBetween implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) ListCompletedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]workperiod.WorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workPeriodColumns + `
		FROM work_periods
		WHERE employee_id = $1
		  AND end_time IS NOT NULL
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed work periods: %w", err)
	}
	defer rows.Close()

	var periods []workperiod.WorkPeriod
	for rows.Next() {
		period, err := scanWorkPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work period: %w", err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work periods: %w", err)
	}

	return periods, nil
}

// ListByEmployee implements workperiod.WorkPeriodRepository.
func (r *workPeriodRepository) ListByEmployee(ctx context.Context, employeeID string, filter workperiod.PeriodFilter) ([]workperiod.WorkPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND start_time >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND start_time < ($%d::date + INTERVAL '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND approval_status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM work_periods WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count work periods: %w", err)
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
		FROM work_periods
		WHERE %s
		ORDER BY start_time DESC
		LIMIT $%d OFFSET $%d
	`, workPeriodColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work periods: %w", err)
	}
	defer rows.Close()

	var periods []workperiod.WorkPeriod
	for rows.Next() {
		period, err := scanWorkPeriod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan work period: %w", err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate work periods: %w", err)
	}

	return periods, total, nil
}
