package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/auth"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

var resetTokenPattern = regexp.MustCompile(`[0-9a-f]{64}`)

type authFixture struct {
	svc      *AuthService
	users    *memUserStore
	creds    *memCredentialStore
	notifier *recordingNotifier
	limiter  *stubLimiter
}

func newAuthFixture() *authFixture {
	users := newMemUserStore()
	creds := newMemCredentialStore(users)
	notifier := &recordingNotifier{}
	limiter := &stubLimiter{}
	return &authFixture{
		svc:      NewAuthService(users, creds, limiter, notifier, testJWTSecret, zap.NewNop()),
		users:    users,
		creds:    creds,
		notifier: notifier,
		limiter:  limiter,
	}
}

func (f *authFixture) seedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return f.users.add(&models.User{
		Name:         "Asha",
		Phone:        "9876543210",
		Email:        "asha@example.com",
		PasswordHash: hash,
		IsActive:     true,
	})
}

// ==============================================
// REGISTER
// ==============================================

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "  Asha  ",
		Phone:    "98765-43210",
		Email:    "Asha@Example.com",
		Password: "sunrise42",
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha", resp.User.Name)
	assert.Equal(t, "9876543210", resp.User.Phone)
	assert.Equal(t, "asha@example.com", resp.User.Email)

	stored := f.users.get(resp.User.ID)
	assert.True(t, auth.IsBcryptHash(stored.PasswordHash))
	assert.True(t, auth.CheckPassword("sunrise42", stored.PasswordHash))
	assert.True(t, stored.IsActive)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Other", Phone: "9876543210", Email: "other@example.com", Password: "sunrise42",
	})
	assert.ErrorIs(t, err, models.ErrPhoneAlreadyExists)

	_, err = f.svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Other", Phone: "9000000001", Email: "asha@example.com", Password: "sunrise42",
	})
	assert.ErrorIs(t, err, models.ErrEmailAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Asha", Phone: "12345", Email: "asha@example.com", Password: "sunrise42",
	})
	assert.ErrorIs(t, err, models.ErrInvalidPhone)

	_, err = f.svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Asha", Phone: "9876543210", Email: "asha@example.com", Password: "short1",
	})
	assert.ErrorIs(t, err, models.ErrWeakPassword)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"sunrise42", false},
		{"a1234567", false},
		{"short1", true},            // under 8 chars
		{"allletters", true},        // no digit
		{"12345678", true},          // no letter
		{"", true},
	}
	for _, tt := range tests {
		err := validatePassword(tt.password)
		if tt.wantErr {
			assert.ErrorIs(t, err, models.ErrWeakPassword, tt.password)
		} else {
			assert.NoError(t, err, tt.password)
		}
	}
}

// ==============================================
// LOGIN
// ==============================================

func TestLogin_SuccessByEmailAndPhone(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "sunrise42")

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "asha@example.com", Password: "sunrise42"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	userID, err := auth.ValidateJWT(resp.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "9876543210", Password: "sunrise42"})
	require.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "asha@example.com", Password: "sunrise43"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "nobody@example.com", Password: "sunrise42"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "sunrise42")
	ctx := context.Background()

	for i := 0; i < maxFailedLogins-1; i++ {
		_, err := f.svc.Login(ctx, dto.LoginRequest{Identifier: "asha@example.com", Password: "sunrise43"})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, dto.LoginRequest{Identifier: "asha@example.com", Password: "sunrise43"})
	assert.ErrorIs(t, err, models.ErrAccountLocked)
	assert.True(t, f.users.get(user.ID).IsLocked())

	// The correct password no longer helps while the lock holds.
	_, err = f.svc.Login(ctx, dto.LoginRequest{Identifier: "asha@example.com", Password: "sunrise42"})
	assert.ErrorIs(t, err, models.ErrAccountLocked)
}

func TestLogin_MigratesLegacyPlaintextPassword(t *testing.T) {
	f := newAuthFixture()
	user := f.users.add(&models.User{
		Name:         "Asha",
		Phone:        "9876543210",
		Email:        "asha@example.com",
		PasswordHash: "legacypass1", // imported row, never hashed
		IsActive:     true,
	})

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "asha@example.com", Password: "legacypass1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	stored := f.users.get(user.ID)
	assert.True(t, auth.IsBcryptHash(stored.PasswordHash))
	assert.True(t, auth.CheckPassword("legacypass1", stored.PasswordHash))

	// Subsequent logins take the bcrypt path with the same password.
	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "asha@example.com", Password: "legacypass1"})
	require.NoError(t, err)
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "sunrise42")
	f.users.users[user.ID].IsActive = false

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Identifier: "asha@example.com", Password: "sunrise42"})
	assert.ErrorIs(t, err, models.ErrAccountInactive)
}

// ==============================================
// PASSWORD RESET
// ==============================================

func TestForgotPassword_UnknownEmailLeavesNoTrace(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")

	resp, err := f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, forgotPasswordMessage, resp.Message)

	assert.Zero(t, f.creds.count())
	assert.Empty(t, f.notifier.all())
}

func TestForgotPassword_IssuesResetToken(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")

	resp, err := f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, forgotPasswordMessage, resp.Message)

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Equal(t, models.NotificationChannelEmail, messages[0].channel)
	assert.Equal(t, "asha@example.com", messages[0].recipient)

	token := resetTokenPattern.FindString(messages[0].body)
	require.Len(t, token, models.ResetTokenHexLen)

	cred, err := f.creds.GetActive(context.Background(), "asha@example.com", models.CredentialPurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, auth.HashToken(token), cred.SecretHash)
	assert.WithinDuration(t, time.Now().Add(models.ResetTokenTTL), cred.ExpiresAt, 5*time.Second)
}

func TestForgotPassword_ThrottledBeforeIssuance(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")
	ctx := context.Background()

	_, err := f.svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "asha@example.com"})
	require.NoError(t, err)
	require.Len(t, f.notifier.all(), 1)

	f.limiter.err = models.ErrResendCooldown

	_, err = f.svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "asha@example.com"})
	assert.ErrorIs(t, err, models.ErrResendCooldown)
	assert.Len(t, f.notifier.all(), 1)

	// The ceiling fires for unknown subjects too, so the throttle itself
	// reveals nothing about account existence.
	f.limiter.err = models.ErrTooManyRequests
	_, err = f.svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, models.ErrTooManyRequests)
}

func TestResetPassword_MalformedToken(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")

	_, err := f.svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Email: "asha@example.com", Token: "not-a-token", NewPassword: "moonrise43",
	})
	assert.ErrorIs(t, err, models.ErrMalformedToken)
}

func TestResetPassword_WeakNewPassword(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")
	token := auth.HashToken("anything") // any 64-hex value is well-formed

	_, err := f.svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{
		Email: "asha@example.com", Token: token, NewPassword: "short",
	})
	assert.ErrorIs(t, err, models.ErrWeakPassword)
}

func TestResetPassword_HappyPathAndSingleUse(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "sunrise42")
	ctx := context.Background()

	// Lock the account first: a completed reset should clear the lock.
	require.NoError(t, f.users.LockAccount(ctx, user.ID, time.Now().Add(30*time.Minute)))

	_, err := f.svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "asha@example.com"})
	require.NoError(t, err)
	token := resetTokenPattern.FindString(f.notifier.all()[0].body)
	require.Len(t, token, models.ResetTokenHexLen)

	resp, err := f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{
		Email: "asha@example.com", Token: token, NewPassword: "moonrise43",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	stored := f.users.get(user.ID)
	assert.True(t, auth.CheckPassword("moonrise43", stored.PasswordHash))
	assert.False(t, auth.CheckPassword("sunrise42", stored.PasswordHash))
	assert.False(t, stored.IsLocked())

	// The token was consumed with the password write; replay fails.
	_, err = f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{
		Email: "asha@example.com", Token: token, NewPassword: "starrise44",
	})
	assert.ErrorIs(t, err, models.ErrCredentialNotFound)
}

func TestResetPassword_WrongToken(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "sunrise42")
	ctx := context.Background()

	_, err := f.svc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "asha@example.com"})
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{
		Email: "asha@example.com", Token: auth.HashToken("guess"), NewPassword: "moonrise43",
	})
	assert.ErrorIs(t, err, models.ErrCredentialInvalid)
}

// ==============================================
// CHANGE PASSWORD
// ==============================================

func TestChangePassword(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "sunrise42")
	ctx := context.Background()

	_, err := f.svc.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "wrongpass9", NewPassword: "moonrise43",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	resp, err := f.svc.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "sunrise42", NewPassword: "moonrise43",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, auth.CheckPassword("moonrise43", f.users.get(user.ID).PasswordHash))
}
