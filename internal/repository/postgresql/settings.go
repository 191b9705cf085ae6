package postgresql

import (
	"context"
	"fmt"

	"github.com/worklens/timeledger-backend-go/internal/domain/settings"
	"github.com/worklens/timeledger-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.Provider {
	return &settingsRepository{db: db}
}

// GetTimezone implements settings.Provider.
func (r *settingsRepository) GetTimezone(ctx context.Context, userID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT timezone FROM user_settings WHERE user_id = $1`

	var timezone string
	err := q.QueryRow(ctx, query, userID).Scan(&timezone)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "UTC", nil // no stored preference
		}
		return "", fmt.Errorf("failed to get user timezone: %w", err)
	}
	if timezone == "" {
		return "UTC", nil
	}

	return timezone, nil
}
