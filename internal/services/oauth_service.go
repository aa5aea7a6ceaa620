package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/models"
)

// oauthService links Google identities to local accounts.
type oauthService struct {
	db *gorm.DB
}

// NewOAuthService creates a new OAuthServicer.
func NewOAuthService(db *gorm.DB) OAuthServicer {
	return &oauthService{db: db}
}

// LoginOrCreate resolves a Google profile to a local user.
//
// If a user with the profile's email already exists, the Google subject is
// attached to it (identity linking) and the existing user is returned.
// Otherwise a new account is created with the email treated as verified —
// the provider already verified it — but with no password, so the account
// must still pass onboarding before it is fully provisioned.
func (s *oauthService) LoginOrCreate(profile GoogleProfile) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" || profile.Subject == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "identity provider returned no email")
	}

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.GoogleID == nil {
			if updErr := s.db.Model(&user).Update("google_id", profile.Subject).Error; updErr != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, updErr)
			}
			user.GoogleID = &profile.Subject
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	firstName := profile.GivenName
	if firstName == "" {
		firstName = "User"
	}

	user = models.User{
		Email:               email,
		Password:            "",
		FirstName:           firstName,
		LastName:            profile.FamilyName,
		Role:                models.RoleTrader,
		EmailVerified:       true,
		GoogleID:            &profile.Subject,
		OnboardingCompleted: false,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Create(&user).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Create(models.DefaultUserSettings(user.ID)).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}
