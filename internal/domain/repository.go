package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUserPlan(ctx context.Context, id int64, plan UserPlan) (*User, error)
}

// SettingsRepository persists one UserSettings row per user.
type SettingsRepository interface {
	// GetUserSettings returns ErrNotFound when the user never saved settings.
	GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error)
	// SaveUserSettings upserts: merges patch into the existing row, or creates
	// one from the defaults.
	SaveUserSettings(ctx context.Context, userID int64, patch SettingsPatch) (*UserSettings, error)
}

// ImageRepository stores the processing history.
type ImageRepository interface {
	SaveImage(ctx context.Context, rec NewImageRecord) (*ImageRecord, error)
	GetImage(ctx context.Context, id int64) (*ImageRecord, error)
	// GetUserImages lists newest first and never returns nil.
	GetUserImages(ctx context.Context, userID int64) ([]ImageRecord, error)
	// ClearUserImages removes rows only; files stay on disk.
	ClearUserImages(ctx context.Context, userID int64) error
}

// Store bundles every repository the API needs.
type Store interface {
	UserRepository
	SettingsRepository
	ImageRepository
}
