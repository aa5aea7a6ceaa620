package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"flowjournal/internal/auth"
	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/logger"
	"flowjournal/internal/models"
)

// userService handles account lifecycle business logic.
type userService struct {
	db           *gorm.DB
	verification VerificationServicer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, verification VerificationServicer) UserServicer {
	return &userService{db: db, verification: verification}
}

// Register creates a new, unverified user together with its default settings
// and a fresh verification token, all in one transaction. The verification
// email is sent best-effort afterwards: a delivery failure is logged, not
// surfaced, since the user can request a resend later.
func (s *userService) Register(in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrUserExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleTrader
	}

	user := &models.User{
		Email:         email,
		Password:      hash,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Role:          role,
		TeamID:        in.TeamID,
		EmailVerified: false,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Create(user).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Create(models.DefaultUserSettings(user.ID)).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if _, txErr := s.verification.IssueToken(user); txErr != nil {
			return txErr
		}
		if txErr := tx.Save(user).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if mailErr := s.verification.SendVerificationEmail(user); mailErr != nil {
		logger.Get().Warnw("verification email delivery failed",
			"email", user.Email,
			"error", mailErr.Error(),
		)
	}

	return user, nil
}

// Login authenticates a user by email and password. Unknown email and wrong
// password fail identically; an unverified email is reported distinctly so
// the client can offer a resend.
func (s *userService) Login(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Federated-only accounts have an empty password hash and can never pass
	// a password login.
	if user.Password == "" || !auth.VerifyPassword(password, user.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// CompleteOnboarding sets the user's password (and optionally names) and
// marks onboarding as completed. This is the gate federated accounts must
// pass before they are fully provisioned.
func (s *userService) CompleteOnboarding(userID, password, firstName, lastName string) (*models.User, error) {
	if len(password) < 8 {
		return nil, apperrors.ErrWeakPassword
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user.Password = hash
	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	user.OnboardingCompleted = true

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// DeleteAccount hard-deletes the user and everything they own in a single
// transaction. Irreversible; the database's ON DELETE CASCADE constraints
// back the same guarantee at the schema level.
func (s *userService) DeleteAccount(userID string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("user_id = ?", userID).Delete(&models.Trade{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Where("user_id = ?", userID).Delete(&models.Strategy{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Where("user_id = ?", userID).Delete(&models.UserSettings{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(user).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
}
