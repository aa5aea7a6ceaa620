// Package errors provides custom error types for the FlowJournal API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	ErrEmailNotVerified   = &AppError{Code: "EMAIL_NOT_VERIFIED", Message: "Please verify your email before logging in", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrUserExists   = &AppError{Code: "USER_EXISTS", Message: "User already exists", StatusCode: http.StatusBadRequest}
	ErrWeakPassword = &AppError{Code: "WEAK_PASSWORD", Message: "Password must be at least 8 characters long", StatusCode: http.StatusBadRequest}
)

// Email verification errors.
var (
	ErrInvalidVerificationToken = &AppError{Code: "INVALID_VERIFICATION_TOKEN", Message: "Invalid or expired verification token", StatusCode: http.StatusBadRequest}
	ErrVerificationTokenExpired = &AppError{Code: "VERIFICATION_TOKEN_EXPIRED", Message: "Verification token has expired. Please request a new verification email.", StatusCode: http.StatusBadRequest}
	ErrEmailAlreadyVerified     = &AppError{Code: "EMAIL_ALREADY_VERIFIED", Message: "Email is already verified", StatusCode: http.StatusBadRequest}
	ErrEmailSendFailed          = &AppError{Code: "EMAIL_SEND_FAILED", Message: "Failed to send verification email", StatusCode: http.StatusInternalServerError}
)

// Trade errors.
var (
	ErrTradeNotFound = &AppError{Code: "TRADE_NOT_FOUND", Message: "Trade not found", StatusCode: http.StatusNotFound}
)
