package dto

// ==============================================
// OTP REQUEST DTOs
// ==============================================

// SendOTPRequest - exactly one of phone, email
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// VerifyOTPRequest - the same identifier the code was requested with
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ==============================================
// OTP RESPONSE DTOs
// ==============================================

type SendOTPResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"` // seconds until the code expires
}

type VerifyOTPResponse struct {
	Verified    bool   `json:"verified"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}
