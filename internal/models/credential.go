package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ==============================================
// CREDENTIAL MODEL
// ==============================================

// Credential is one outstanding OTP or password-reset token, stored only as a
// digest. At most one unconsumed credential exists per (subject, purpose);
// issuance replaces any prior one inside a single transaction.
type Credential struct {
	ID         int64              `db:"id"`
	Subject    string             `db:"subject"` // normalized phone or email
	Purpose    string             `db:"purpose"`
	SecretHash string             `db:"secret_hash"`
	Attempts   int32              `db:"attempts"`
	ExpiresAt  time.Time          `db:"expires_at"`
	ConsumedAt pgtype.Timestamptz `db:"consumed_at"`
	CreatedAt  time.Time          `db:"created_at"`
}

func (c *Credential) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

func (c *Credential) IsConsumed() bool {
	return c.ConsumedAt.Valid
}

// ==============================================
// PURPOSE CONSTANTS
// ==============================================
const (
	CredentialPurposeOTP           = "otp"
	CredentialPurposePasswordReset = "password_reset"
)

// ==============================================
// CREDENTIAL CONFIGURATION
// ==============================================
const (
	OTPLength          = 6
	OTPTTL             = 10 * time.Minute
	ResetTokenTTL      = 15 * time.Minute
	ResetTokenHexLen   = 64 // 32 random bytes, hex encoded
	CredentialAttempts = 5  // verification attempt ceiling

	OTPResendCooldown = 60 * time.Second
	OTPHourlyLimit    = 5 // max issuances per subject per hour
)
