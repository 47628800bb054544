package dto

// ==============================================
// AUTH REQUEST DTOs
// ==============================================

// RegisterRequest - new customer account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest - email or phone + password
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// ForgotPasswordRequest - initiate reset; response never reveals whether the
// account exists
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest - complete reset with the emailed token
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest - user is logged in
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ==============================================
// AUTH RESPONSE DTOs
// ==============================================

type RegisterResponse struct {
	User    *UserDTO `json:"user"`
	Message string   `json:"message"`
}

type LoginResponse struct {
	User        *UserDTO `json:"user"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int      `json:"expires_in"` // seconds
	TokenType   string   `json:"token_type"` // "Bearer"
}

type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

type ResetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ChangePasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ==============================================
// SUPPORTING DTOs
// ==============================================

// UserDTO - safe user representation
type UserDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"` // ISO 8601
}
