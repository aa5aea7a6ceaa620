package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flowjournal/internal/auth"
	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/models"
	"flowjournal/internal/services"
)

// AuthHandler handles registration, login, email verification, onboarding,
// and account deletion.
type AuthHandler struct {
	userService         services.UserServicer
	verificationService services.VerificationServicer
	issuer              *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, verificationService services.VerificationServicer, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		userService:         userService,
		verificationService: verificationService,
		issuer:              issuer,
	}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,min=8,max=128"`
	FirstName string  `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string  `json:"lastName" binding:"required,min=2,max=100"`
	Role      string  `json:"role" binding:"omitempty,user_role"`
	TeamID    *string `json:"teamId" binding:"omitempty,uuid"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	Role                string  `json:"role"`
	TeamID              *string `json:"teamId,omitempty"`
	EmailVerified       bool    `json:"emailVerified"`
	OnboardingCompleted bool    `json:"onboardingCompleted"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                  user.ID,
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Role:                string(user.Role),
		TeamID:              user.TeamID,
		EmailVerified:       user.EmailVerified,
		OnboardingCompleted: user.OnboardingCompleted,
	}
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user. The account starts unverified; a verification email is sent and no session token is returned.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} UserResponse "User registered, verification pending"
// @Failure     400 {object} ErrorResponse "Invalid input or user already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.Register(services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.UserRole(req.Role),
		TeamID:    req.TeamID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Verification is mandatory before first login, so no token yet.
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to verify your account.",
		"user":    userResponse(user),
	})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a session token. Requires a verified email.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials or email not verified"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// GetMe returns the authenticated user's profile
// @Summary     Get current user
// @Description Get the authenticated user's profile information
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// VerifyEmail consumes an email verification token
// @Summary     Verify email address
// @Description Consume a verification token. Idempotent for already-verified users. Returns a session token on success (auto-login).
// @Tags        auth
// @Produce     json
// @Param       token path string true "Verification token"
// @Success     200 {object} AuthResponse "Email verified"
// @Failure     400 {object} ErrorResponse "Invalid or expired token"
// @Router      /auth/verify/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	user, alreadyVerified, err := h.verificationService.Consume(c.Param("token"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if alreadyVerified {
		c.JSON(http.StatusOK, gin.H{
			"message":         "Email already verified.",
			"alreadyVerified": true,
			"token":           token,
			"user":            userResponse(user),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Email verified successfully.",
		"verified": true,
		"token":    token,
		"user":     userResponse(user),
	})
}

// ResendVerificationRequest represents the resend-verification payload
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification reissues and resends a verification token
// @Summary     Resend verification email
// @Description Reissue a fresh verification token and email it to the user
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResendVerificationRequest true "Account email"
// @Success     200 {object} map[string]string "Verification email sent"
// @Failure     400 {object} ErrorResponse "Already verified"
// @Failure     404 {object} ErrorResponse "Unknown user"
// @Router      /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.verificationService.Resend(req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent. Please check your inbox."})
}

// CompleteOnboardingRequest represents the onboarding payload
type CompleteOnboardingRequest struct {
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"firstName" binding:"omitempty,max=100"`
	LastName  string `json:"lastName" binding:"omitempty,max=100"`
}

// CompleteOnboarding sets a password and finishes account provisioning
// @Summary     Complete onboarding
// @Description Set a password (required for federated accounts) and mark onboarding as completed
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CompleteOnboardingRequest true "Onboarding data"
// @Success     200 {object} UserResponse "Onboarding completed"
// @Failure     400 {object} ErrorResponse "Weak password"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/complete-onboarding [post]
func (h *AuthHandler) CompleteOnboarding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CompleteOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CompleteOnboarding(userID, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// DeleteAccount irreversibly deletes the authenticated user's account
// @Summary     Delete account
// @Description Hard-delete the authenticated user and all data they own
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/delete-account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteAccount(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
