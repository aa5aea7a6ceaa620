package models

import "github.com/shopspring/decimal"

// UserSettings holds per-user preferences. A default row is created when the
// user registers and rebuilt on demand if it is ever missing.
type UserSettings struct {
	Base
	UserID                string          `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Theme                 string          `gorm:"not null;default:'dark'" json:"theme"`
	Language              string          `gorm:"not null;default:'en'" json:"language"`
	Currency              string          `gorm:"not null;default:'USD'" json:"currency"`
	Timezone              string          `gorm:"not null;default:'UTC'" json:"timezone"`
	DefaultRiskPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:1" json:"defaultRiskPercentage"`
	EnableNotifications   bool            `gorm:"not null;default:true" json:"enableNotifications"`
	CompactMode           bool            `gorm:"not null;default:false" json:"compactMode"`
}

// DefaultUserSettings returns the settings row created for a new user.
func DefaultUserSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:                userID,
		Theme:                 "dark",
		Language:              "en",
		Currency:              "USD",
		Timezone:              "UTC",
		DefaultRiskPercentage: decimal.NewFromInt(1),
		EnableNotifications:   true,
		CompactMode:           false,
	}
}
