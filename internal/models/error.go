package models

import "errors"

// ==============================================
// PREDEFINED ERRORS
// ==============================================

// User/Auth Errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrPhoneAlreadyExists = errors.New("phone number already registered")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be 8-128 characters with at least one letter and one digit")
	ErrSubjectRequired    = errors.New("phone or email is required")
)

// Credential (OTP / reset token) Errors
var (
	ErrCredentialNotFound = errors.New("code is invalid or has expired")
	ErrCredentialExpired  = errors.New("code has expired")
	ErrCredentialInvalid  = errors.New("invalid code")
	ErrTooManyAttempts    = errors.New("maximum verification attempts exceeded")
	ErrResendCooldown     = errors.New("please wait before requesting another code")
	ErrTooManyRequests    = errors.New("too many code requests, please try again later")
	ErrMalformedToken     = errors.New("malformed reset token")
)

// Payment Errors
var (
	ErrSignatureMismatch  = errors.New("payment signature verification failed")
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrDuplicateReceipt   = errors.New("payment order already exists for receipt")
	ErrGatewayUnavailable = errors.New("payment gateway request failed")
)

// Job Errors
var (
	ErrJobNotFound = errors.New("sync job not found")
)

// ==============================================
// ERROR CODES (for API responses)
// ==============================================
const (
	ErrCodeValidation = "VALIDATION"
	ErrCodeAuth       = "AUTH"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeInternal   = "INTERNAL"

	// Specific OTP failure reasons surfaced to clients
	ErrCodeOTPExpired     = "OTP_EXPIRED"
	ErrCodeOTPInvalid     = "OTP_INVALID"
	ErrCodeOTPMaxAttempts = "OTP_MAX_ATTEMPTS"
)

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// IsValidationError checks if error maps to a 400 response
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrSubjectRequired) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrCredentialNotFound) ||
		errors.Is(err, ErrCredentialExpired) ||
		errors.Is(err, ErrCredentialInvalid) ||
		errors.Is(err, ErrTooManyAttempts)
}

// IsAuthError checks if error maps to a 401 response
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrAccountInactive) ||
		errors.Is(err, ErrSignatureMismatch)
}

// IsConflictError checks if error maps to a 409 response
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists) ||
		errors.Is(err, ErrPhoneAlreadyExists) ||
		errors.Is(err, ErrDuplicateReceipt)
}

// IsNotFoundError checks if error maps to a 404 response
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrJobNotFound)
}
