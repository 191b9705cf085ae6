package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/worklens/timeledger-backend-go/internal/domain/holiday"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayValidator struct {
	db *database.DB
}

func NewHolidayValidator(db *database.DB) holiday.Validator {
	return &holidayValidator{db: db}
}

// ValidateRange implements holiday.Validator. A corrected range is invalid
// when it overlaps a blocking holiday or a blackout window configured for
// the organization.
func (v *holidayValidator) ValidateRange(ctx context.Context, organizationID string, start, end time.Time) (holiday.ValidationResult, error) {
	q := GetQuerier(ctx, v.db)

	query := `
		SELECT name
		FROM holidays
		WHERE organization_id = $1
		  AND blocks_time_entry = TRUE
		  AND date >= $2::date
		  AND date <= $3::date
		LIMIT 1
	`

	var name string
	err := q.QueryRow(ctx, query, organizationID, start, end).Scan(&name)
	if err != nil && err != pgx.ErrNoRows {
		return holiday.ValidationResult{}, fmt.Errorf("failed to check holidays: %w", err)
	}
	if err == nil {
		return holiday.ValidationResult{
			IsValid:     false,
			Reason:      fmt.Sprintf("range overlaps holiday %q", name),
			HolidayName: &name,
		}, nil
	}

	blackoutQuery := `
		SELECT name
		FROM blackout_ranges
		WHERE organization_id = $1
		  AND starts_at < $3
		  AND ends_at > $2
		LIMIT 1
	`

	err = q.QueryRow(ctx, blackoutQuery, organizationID, start, end).Scan(&name)
	if err != nil && err != pgx.ErrNoRows {
		return holiday.ValidationResult{}, fmt.Errorf("failed to check blackout ranges: %w", err)
	}
	if err == nil {
		return holiday.ValidationResult{
			IsValid: false,
			Reason:  fmt.Sprintf("range overlaps blackout window %q", name),
		}, nil
	}

	return holiday.ValidationResult{IsValid: true}, nil
}
