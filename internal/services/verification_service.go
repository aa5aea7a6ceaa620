package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/mailer"
	"flowjournal/internal/models"
)

// verificationTokenTTL is how long an email-verification token stays valid.
const verificationTokenTTL = 24 * time.Hour

// verificationService manages time-limited, single-use email verification
// tokens stored on the user row.
type verificationService struct {
	db          *gorm.DB
	mailer      mailer.Mailer
	frontendURL string
}

// NewVerificationService creates a new VerificationServicer. The mailer is
// injected; tests pass a stub.
func NewVerificationService(db *gorm.DB, m mailer.Mailer, frontendURL string) VerificationServicer {
	return &verificationService{db: db, mailer: m, frontendURL: frontendURL}
}

// IssueToken generates a fresh random token and sets it, with its expiry,
// on the user struct. Persistence is the caller's responsibility so the
// write can join an enclosing transaction.
func (s *verificationService) IssueToken(user *models.User) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(verificationTokenTTL)

	user.VerificationToken = &token
	user.VerificationTokenExpires = &expires
	return token, nil
}

// verifyURL builds the deep link embedded in the verification email.
func (s *verificationService) verifyURL(token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)
}

// SendVerificationEmail hands the user's current token to the mail transport.
func (s *verificationService) SendVerificationEmail(user *models.User) error {
	if user.VerificationToken == nil {
		return apperrors.WithMessage(apperrors.ErrInternalServer, "user has no verification token")
	}
	return s.mailer.SendVerificationEmail(user.Email, user.FirstName, s.verifyURL(*user.VerificationToken))
}

// Consume validates a verification token and marks the owning user verified.
//
// Re-submitting a token after the user is already verified succeeds
// idempotently: users click stale links after verifying in another tab, and
// that must not error. An expired token is rejected without being cleared,
// so a resend is the only way forward. Expiry is strict: a token consumed at
// exactly its expiry instant is still valid.
func (s *verificationService) Consume(token string) (*models.User, bool, error) {
	if token == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "Verification token is required")
	}

	var user models.User
	if err := s.db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperrors.ErrInvalidVerificationToken
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.EmailVerified {
		return &user, true, nil
	}

	if user.VerificationTokenExpires != nil && time.Now().After(*user.VerificationTokenExpires) {
		return nil, false, apperrors.ErrVerificationTokenExpired
	}

	updates := map[string]interface{}{
		"email_verified":             true,
		"verification_token":         nil,
		"verification_token_expires": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpires = nil
	return &user, false, nil
}

// Resend reissues a fresh token (overwriting any prior one) and sends the
// verification email. Unlike registration, a delivery failure here is
// surfaced: sending the mail is the whole point of the call.
func (s *verificationService) Resend(email string) error {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	if _, err := s.IssueToken(&user); err != nil {
		return err
	}
	if err := s.db.Save(&user).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.SendVerificationEmail(&user); err != nil {
		return apperrors.Wrap(apperrors.ErrEmailSendFailed, err)
	}
	return nil
}
