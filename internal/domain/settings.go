package domain

import "time"

// Theme values accepted for the appearance settings.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// UserSettings holds per-user preferences. One row per user.
type UserSettings struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"userId"`
	Theme              string    `json:"theme"`
	HighContrastMode   bool      `json:"highContrastMode"`
	LargeText          bool      `json:"largeText"`
	EmailNotifications bool      `json:"emailNotifications"`
	MarketingEmails    bool      `json:"marketingEmails"`
	SaveHistory        bool      `json:"saveHistory"`
	ShareUsageData     bool      `json:"shareUsageData"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultUserSettings returns the settings a user has before saving any.
func DefaultUserSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:             userID,
		Theme:              ThemeLight,
		HighContrastMode:   false,
		LargeText:          false,
		EmailNotifications: true,
		MarketingEmails:    false,
		SaveHistory:        true,
		ShareUsageData:     true,
	}
}

// SettingsPatch carries a partial update. Nil fields are left unchanged on an
// existing row and take their default on a new one.
type SettingsPatch struct {
	Theme              *string
	HighContrastMode   *bool
	LargeText          *bool
	EmailNotifications *bool
	MarketingEmails    *bool
	SaveHistory        *bool
	ShareUsageData     *bool
}

// Apply merges the non-nil fields of p into s.
func (p SettingsPatch) Apply(s *UserSettings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.HighContrastMode != nil {
		s.HighContrastMode = *p.HighContrastMode
	}
	if p.LargeText != nil {
		s.LargeText = *p.LargeText
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.MarketingEmails != nil {
		s.MarketingEmails = *p.MarketingEmails
	}
	if p.SaveHistory != nil {
		s.SaveHistory = *p.SaveHistory
	}
	if p.ShareUsageData != nil {
		s.ShareUsageData = *p.ShareUsageData
	}
}
