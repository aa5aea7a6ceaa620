package models

import (
	"time"

	"flowjournal/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Deletes are hard deletes;
// removing an account must actually remove its rows, so there is no
// soft-delete column.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
