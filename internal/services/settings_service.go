package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/models"
)

// settingsService handles per-user settings.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// GetSettings returns the user's settings, creating the default row if it is
// missing. Registration creates defaults, but accounts that predate a
// settings column rollout may not have a row yet.
func (s *settingsService) GetSettings(userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	defaults := models.DefaultUserSettings(userID)
	if err := s.db.Create(defaults).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return defaults, nil
}

// UpdateSettings applies a partial update; nil fields are left untouched.
func (s *settingsService) UpdateSettings(userID string, patch SettingsPatch) (*models.UserSettings, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	if patch.Theme != nil {
		settings.Theme = *patch.Theme
	}
	if patch.Language != nil {
		settings.Language = *patch.Language
	}
	if patch.Currency != nil {
		settings.Currency = *patch.Currency
	}
	if patch.Timezone != nil {
		settings.Timezone = *patch.Timezone
	}
	if patch.DefaultRiskPercentage != nil {
		settings.DefaultRiskPercentage = *patch.DefaultRiskPercentage
	}
	if patch.EnableNotifications != nil {
		settings.EnableNotifications = *patch.EnableNotifications
	}
	if patch.CompactMode != nil {
		settings.CompactMode = *patch.CompactMode
	}

	if err := s.db.Save(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}
