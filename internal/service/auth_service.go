package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/auth"
	"github.com/rahul3988/updnefol-backend/internal/models"
	"github.com/rahul3988/updnefol-backend/internal/repository"
)

// ==============================================
// AUTH SERVICE
// ==============================================

// forgotPasswordMessage is returned whether or not the account exists.
const forgotPasswordMessage = "If an account exists, a reset code has been sent."

const (
	maxFailedLogins = 5
	lockoutDuration = 30 * time.Minute
)

type AuthService struct {
	users     UserStore
	creds     CredentialStore
	limiter   IssueLimiter
	notifier  Notifier
	jwtSecret string
	log       *zap.Logger
}

func NewAuthService(
	users UserStore,
	creds CredentialStore,
	limiter IssueLimiter,
	notifier Notifier,
	jwtSecret string,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		creds:     creds,
		limiter:   limiter,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// ==============================================
// REGISTER
// ==============================================

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	phone := auth.NormalizePhone(req.Phone)
	if len(phone) < 10 {
		return nil, models.ErrInvalidPhone
	}
	email := auth.NormalizeEmail(req.Email)

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByPhone(ctx, phone); err == nil {
		return nil, models.ErrPhoneAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, models.ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Phone:        phone,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// The unique constraint still backstops the pre-checks under
		// concurrent registration.
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, models.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &dto.RegisterResponse{
		User:    userToDTO(user),
		Message: "Account created successfully.",
	}, nil
}

// ==============================================
// LOGIN
// ==============================================

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var user *models.User
	var err error

	identifier := strings.TrimSpace(req.Identifier)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetUserByEmail(ctx, auth.NormalizeEmail(identifier))
	} else {
		user, err = s.users.GetUserByPhone(ctx, auth.NormalizePhone(identifier))
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		return nil, models.ErrAccountLocked
	}
	if !user.IsActive {
		return nil, models.ErrAccountInactive
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		attempts, incErr := s.users.IncrementFailedLogins(ctx, user.ID)
		if incErr != nil {
			s.log.Error("failed to record failed login", zap.Int("user_id", user.ID), zap.Error(incErr))
		}
		if attempts >= maxFailedLogins {
			_ = s.users.LockAccount(ctx, user.ID, time.Now().Add(lockoutDuration))
			return nil, models.ErrAccountLocked
		}
		return nil, models.ErrInvalidCredentials
	}

	// Lazy migration: a legacy plaintext row is re-hashed on its first
	// successful login, before the response goes out.
	if !auth.IsBcryptHash(user.PasswordHash) {
		newHash, hashErr := auth.HashPassword(req.Password)
		if hashErr != nil {
			return nil, fmt.Errorf("failed to hash password: %w", hashErr)
		}
		if updateErr := s.users.UpdatePassword(ctx, user.ID, newHash); updateErr != nil {
			s.log.Error("failed to migrate legacy password", zap.Int("user_id", user.ID), zap.Error(updateErr))
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	token, expiresIn, err := auth.GenerateJWT(user.ID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.LoginResponse{
		User:        userToDTO(user),
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	}, nil
}

// ==============================================
// PASSWORD RESET
// ==============================================

// ForgotPassword issues a reset token. The response is identical whether or
// not an account exists for the email, and for unknown accounts nothing is
// stored or sent.
func (s *AuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	email := auth.NormalizeEmail(req.Email)

	// Throttled before the account lookup, so the limiter fires identically
	// for known and unknown subjects.
	if err := s.limiter.Allow(ctx, email); err != nil {
		return nil, err
	}

	resp := &dto.ForgotPasswordResponse{Message: forgotPasswordMessage}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return resp, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	cred := &models.Credential{
		Subject:    email,
		Purpose:    models.CredentialPurposePasswordReset,
		SecretHash: auth.HashToken(token),
		ExpiresAt:  time.Now().Add(models.ResetTokenTTL),
	}
	if err := s.creds.Replace(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nWe received a request to reset your password.\n\nYour reset code is: %s\n\nThe code expires in %d minutes. If you didn't request this, ignore this email and your password will remain unchanged.",
		user.Name, token, int(models.ResetTokenTTL.Minutes()))

	if err := s.notifier.EnqueueEmail(ctx, email, "Reset your password", body); err != nil {
		s.log.Error("failed to enqueue reset email", zap.Error(err))
	}

	return resp, nil
}

// ResetPassword completes a reset. Consuming the token and writing the new
// password hash happen in one transaction.
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	if !auth.IsHexToken(req.Token, models.ResetTokenHexLen) {
		return nil, models.ErrMalformedToken
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return nil, err
	}

	email := auth.NormalizeEmail(req.Email)

	cred, err := s.creds.GetActive(ctx, email, models.CredentialPurposePasswordReset)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, models.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	if err := checkCredential(ctx, s.creds, cred, req.Token); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, models.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.creds.ConsumeAndSetPassword(ctx, cred.ID, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, models.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	if user.IsLocked() {
		_ = s.users.UnlockAccount(ctx, user.ID)
	}

	return &dto.ResetPasswordResponse{
		Success: true,
		Message: "Password reset successfully. You can now login with your new password.",
	}, nil
}

// ==============================================
// CHANGE PASSWORD
// ==============================================

func (s *AuthService) ChangePassword(ctx context.Context, userID int, req dto.ChangePasswordRequest) (*dto.ChangePasswordResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	if err := validatePassword(req.NewPassword); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return &dto.ChangePasswordResponse{
		Success: true,
		Message: "Password changed successfully",
	}, nil
}

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// validatePassword enforces the minimum policy: 8-128 chars, at least one
// letter and one digit.
func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return models.ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return models.ErrWeakPassword
	}

	return nil
}

func userToDTO(user *models.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Phone:     user.Phone,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
