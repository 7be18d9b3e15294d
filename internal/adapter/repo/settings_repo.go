package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
	"github.com/Shaharyar2310/silkif.y/internal/sqlinline"
)

// SettingsRepositoryPG implements domain.SettingsRepository backed by PostgreSQL.
type SettingsRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSettingsRepository(sql infra.SQLExecutor) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{sql: sql}
}

func (r *SettingsRepositoryPG) GetUserSettings(ctx context.Context, userID int64) (*domain.UserSettings, error) {
	return scanSettings("get settings", r.sql.QueryRow(ctx, sqlinline.QSelectUserSettings, userID))
}

// SaveUserSettings upserts in one statement; nil patch fields are sent as NULL
// and resolved by coalesce.
func (r *SettingsRepositoryPG) SaveUserSettings(ctx context.Context, userID int64, patch domain.SettingsPatch) (*domain.UserSettings, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertUserSettings,
		userID,
		patch.Theme,
		patch.HighContrastMode,
		patch.LargeText,
		patch.EmailNotifications,
		patch.MarketingEmails,
		patch.SaveHistory,
		patch.ShareUsageData,
	)
	return scanSettings("save settings", row)
}

func scanSettings(op string, row pgx.Row) (*domain.UserSettings, error) {
	var s domain.UserSettings
	if err := row.Scan(&s.ID, &s.UserID, &s.Theme, &s.HighContrastMode, &s.LargeText, &s.EmailNotifications,
		&s.MarketingEmails, &s.SaveHistory, &s.ShareUsageData, &s.UpdatedAt); err != nil {
		return nil, mapError(op, err)
	}
	return &s, nil
}

var _ domain.SettingsRepository = (*SettingsRepositoryPG)(nil)
