package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/services"
)

// SettingsHandler handles per-user settings requests.
type SettingsHandler struct {
	settingsService services.SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// UpdateSettingsRequest represents the partial-update payload for settings.
type UpdateSettingsRequest struct {
	Theme                 *string          `json:"theme" binding:"omitempty,oneof=light dark system"`
	Language              *string          `json:"language" binding:"omitempty,min=2,max=8"`
	Currency              *string          `json:"currency" binding:"omitempty,len=3"`
	Timezone              *string          `json:"timezone" binding:"omitempty,max=64"`
	DefaultRiskPercentage *decimal.Decimal `json:"defaultRiskPercentage"`
	EnableNotifications   *bool            `json:"enableNotifications"`
	CompactMode           *bool            `json:"compactMode"`
}

// GetSettings returns the caller's settings
// @Summary     Get settings
// @Description Get the authenticated user's settings, creating defaults if none exist.
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.UserSettings "Settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial update to the caller's settings
// @Summary     Update settings
// @Description Partially update the authenticated user's settings.
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Fields to update"
// @Success     200 {object} models.UserSettings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.UpdateSettings(userID, services.SettingsPatch{
		Theme:                 req.Theme,
		Language:              req.Language,
		Currency:              req.Currency,
		Timezone:              req.Timezone,
		DefaultRiskPercentage: req.DefaultRiskPercentage,
		EnableNotifications:   req.EnableNotifications,
		CompactMode:           req.CompactMode,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
