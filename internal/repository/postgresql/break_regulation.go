package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/worklens/timeledger-backend-go/internal/domain/compliance"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type breakRegulationRepository struct {
	db *database.DB
}

func NewBreakRegulationRepository(db *database.DB) compliance.RegulationRepository {
	return &breakRegulationRepository{db: db}
}

// GetForEmployee implements compliance.RegulationRepository. The regulation
// is assigned per organization; employees inherit it through their org.
func (r *breakRegulationRepository) GetForEmployee(ctx context.Context, employeeID string) (*compliance.BreakRegulation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT br.id, br.organization_id, br.name,
			   br.max_daily_minutes, br.max_weekly_minutes, br.max_uninterrupted_minutes,
			   br.break_rules
		FROM break_regulations br
		JOIN employees e ON e.organization_id = br.organization_id
		WHERE e.id = $1
		  AND br.is_active = TRUE
		LIMIT 1
	`

	var reg compliance.BreakRegulation
	var rules []byte
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&reg.ID, &reg.OrganizationID, &reg.Name,
		&reg.MaxDailyMinutes, &reg.MaxWeeklyMinutes, &reg.MaxUninterruptedMinutes,
		&rules,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no statutory rules apply
		}
		return nil, fmt.Errorf("failed to get break regulation: %w", err)
	}

	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &reg.BreakRules); err != nil {
			return nil, fmt.Errorf("failed to decode break_rules: %w", err)
		}
	}

	return &reg, nil
}
