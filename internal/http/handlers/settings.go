package handlers

import (
	"errors"
	"net/http"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
)

type settingsReq struct {
	Appearance *struct {
		Theme            *string `json:"theme"`
		HighContrastMode *bool   `json:"highContrastMode"`
		LargeText        *bool   `json:"largeText"`
	} `json:"appearance"`
	Notifications *struct {
		EmailNotifications *bool `json:"emailNotifications"`
		MarketingEmails    *bool `json:"marketingEmails"`
	} `json:"notifications"`
	Privacy *struct {
		SaveHistory    *bool `json:"saveHistory"`
		ShareUsageData *bool `json:"shareUsageData"`
	} `json:"privacy"`
}

func (req settingsReq) patch() domain.SettingsPatch {
	var p domain.SettingsPatch
	if s := req.Appearance; s != nil {
		p.Theme, p.HighContrastMode, p.LargeText = s.Theme, s.HighContrastMode, s.LargeText
	}
	if s := req.Notifications; s != nil {
		p.EmailNotifications, p.MarketingEmails = s.EmailNotifications, s.MarketingEmails
	}
	if s := req.Privacy; s != nil {
		p.SaveHistory, p.ShareUsageData = s.SaveHistory, s.ShareUsageData
	}
	return p
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	settings, err := a.Store.GetUserSettings(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		def := domain.DefaultUserSettings(userID)
		settings, err = &def, nil
	}
	if err != nil {
		a.log(r).Error().Err(err).Int64("user_id", userID).Msg("load settings")
		a.error(w, http.StatusInternalServerError, "internal", "Error loading settings")
		return
	}
	a.json(w, http.StatusOK, settings)
}

func (a *App) SettingsSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	var req settingsReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid settings payload")
		return
	}
	patch := req.patch()
	if patch.Theme != nil {
		switch *patch.Theme {
		case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
		default:
			a.error(w, http.StatusBadRequest, "bad_request", "theme must be light, dark or system")
			return
		}
	}

	settings, err := a.Store.SaveUserSettings(r.Context(), userID, patch)
	if err != nil {
		a.log(r).Error().Err(err).Int64("user_id", userID).Msg("save settings")
		a.error(w, http.StatusInternalServerError, "internal", "Error saving settings")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"message":  "Settings saved successfully",
		"settings": settings,
	})
}
