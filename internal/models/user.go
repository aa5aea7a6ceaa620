package models

import "time"

// UserRole controls what a user may see and edit. Admins bypass ownership
// scoping on trades and stats.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleTrader  UserRole = "trader"
	RoleViewer  UserRole = "viewer"
)

// User represents the user model in the database.
//
// An empty Password together with a non-nil GoogleID marks a federated-only
// account: it was created from a Google sign-in and must complete onboarding
// (set a password) before OnboardingCompleted becomes true.
type User struct {
	Base
	Email     string   `gorm:"uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"not null;default:''" json:"-"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      UserRole `gorm:"not null;default:'trader'" json:"role"`
	TeamID    *string  `gorm:"type:uuid" json:"teamId,omitempty"`

	// Email verification state. The token is single-use: consuming it clears
	// both the token and its expiry.
	EmailVerified            bool       `gorm:"not null;default:false" json:"emailVerified"`
	VerificationToken        *string    `gorm:"index" json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`

	// Google subject identifier for federated accounts.
	GoogleID *string `gorm:"index" json:"-"`

	OnboardingCompleted bool `gorm:"not null;default:false" json:"onboardingCompleted"`

	Trades     []Trade       `gorm:"foreignKey:UserID" json:"trades,omitempty"`
	Strategies []Strategy    `gorm:"foreignKey:UserID" json:"strategies,omitempty"`
	Settings   *UserSettings `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}

// IsFederatedOnly reports whether the account was created by an identity
// provider and has not yet set a local password.
func (u *User) IsFederatedOnly() bool {
	return u.GoogleID != nil && u.Password == ""
}
