package models

// Strategy is a named trading strategy a trade can reference.
type Strategy struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index" json:"userId"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Rules       string `json:"rules"`
}
