package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/auth"
	"github.com/rahul3988/updnefol-backend/internal/models"
	"github.com/rahul3988/updnefol-backend/internal/repository"
)

// ==============================================
// OTP SERVICE
// ==============================================

type OTPService struct {
	users     UserStore
	creds     CredentialStore
	limiter   IssueLimiter
	notifier  Notifier
	jwtSecret string
	log       *zap.Logger
}

func NewOTPService(
	users UserStore,
	creds CredentialStore,
	limiter IssueLimiter,
	notifier Notifier,
	jwtSecret string,
	log *zap.Logger,
) *OTPService {
	return &OTPService{
		users:     users,
		creds:     creds,
		limiter:   limiter,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// ==============================================
// SEND
// ==============================================

// Send issues a fresh OTP for the subject. Whether or not an account exists,
// the caller gets the same success response; for unknown subjects nothing is
// stored and nothing is sent.
func (s *OTPService) Send(ctx context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error) {
	subject, byPhone, err := resolveSubject(req.Phone, req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, subject); err != nil {
		return nil, err
	}

	resp := &dto.SendOTPResponse{
		Message:   "Verification code sent",
		ExpiresIn: int(models.OTPTTL.Seconds()),
	}

	var user *models.User
	if byPhone {
		user, err = s.users.GetUserByPhone(ctx, subject)
	} else {
		user, err = s.users.GetUserByEmail(ctx, subject)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Identical response for unknown subjects, with no row written
			// and no message sent.
			return resp, nil
		}
		return nil, fmt.Errorf("failed to look up subject: %w", err)
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	cred := &models.Credential{
		Subject:    subject,
		Purpose:    models.CredentialPurposeOTP,
		SecretHash: auth.HashToken(code),
		ExpiresAt:  time.Now().Add(models.OTPTTL),
	}
	if err := s.creds.Replace(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	body := fmt.Sprintf(
		"Your verification code is %s. It expires in %d minutes. Do not share it with anyone.",
		code, int(models.OTPTTL.Minutes()))

	if byPhone {
		err = s.notifier.EnqueueWhatsApp(ctx, subject, user.Email, body)
	} else {
		err = s.notifier.EnqueueEmail(ctx, subject, "Your verification code", body)
	}
	if err != nil {
		// Delivery trouble is never surfaced to the caller.
		s.log.Error("failed to enqueue OTP delivery", zap.Error(err))
	}

	return resp, nil
}

// ==============================================
// VERIFY
// ==============================================

// Verify runs the credential state machine: absent, expired and
// over-attempted credentials each fail with their own reason, and a matched
// code is consumed so it can never verify twice.
func (s *OTPService) Verify(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	subject, byPhone, err := resolveSubject(req.Phone, req.Email)
	if err != nil {
		return nil, err
	}

	cred, err := s.creds.GetActive(ctx, subject, models.CredentialPurposeOTP)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, models.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get OTP: %w", err)
	}

	if err := checkCredential(ctx, s.creds, cred, req.OTP); err != nil {
		return nil, err
	}

	consumed, err := s.creds.Consume(ctx, cred.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume OTP: %w", err)
	}
	if !consumed {
		// Lost the race with another verification of the same code.
		return nil, models.ErrCredentialNotFound
	}

	resp := &dto.VerifyOTPResponse{Verified: true}

	var user *models.User
	if byPhone {
		user, err = s.users.GetUserByPhone(ctx, subject)
	} else {
		user, err = s.users.GetUserByEmail(ctx, subject)
	}
	if err == nil {
		token, expiresIn, jwtErr := auth.GenerateJWT(user.ID, user.Email, s.jwtSecret)
		if jwtErr != nil {
			return nil, fmt.Errorf("failed to generate token: %w", jwtErr)
		}
		resp.AccessToken = token
		resp.ExpiresIn = expiresIn
		resp.TokenType = "Bearer"
	}

	return resp, nil
}

// ==============================================
// SHARED VERIFICATION STEPS
// ==============================================

// checkCredential enforces expiry, the attempt ceiling and the constant-time
// digest comparison, invalidating terminal credentials as it goes. Shared by
// OTP verification and password-reset completion.
func checkCredential(ctx context.Context, store CredentialStore, cred *models.Credential, raw string) error {
	if cred.IsExpired() {
		_ = store.Delete(ctx, cred.ID)
		return models.ErrCredentialExpired
	}

	if cred.Attempts >= models.CredentialAttempts {
		_ = store.Delete(ctx, cred.ID)
		return models.ErrTooManyAttempts
	}

	if !auth.DigestEqual(auth.HashToken(raw), cred.SecretHash) {
		attempts, err := store.IncrementAttempts(ctx, cred.ID)
		if err == nil && attempts >= models.CredentialAttempts {
			_ = store.Delete(ctx, cred.ID)
		}
		return models.ErrCredentialInvalid
	}

	return nil
}

// resolveSubject normalizes the identifier; exactly one of phone/email must be
// set.
func resolveSubject(phone, email string) (subject string, byPhone bool, err error) {
	switch {
	case phone != "" && email != "":
		return "", false, models.ErrSubjectRequired
	case phone != "":
		subject = auth.NormalizePhone(phone)
		if len(subject) < 10 {
			return "", false, models.ErrInvalidPhone
		}
		return subject, true, nil
	case email != "":
		return auth.NormalizeEmail(email), false, nil
	default:
		return "", false, models.ErrSubjectRequired
	}
}
