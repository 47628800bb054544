package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

var otpMax = big.NewInt(1_000_000) // 10^6 for a 6-digit OTP

// GenerateOTP generates a uniformly distributed 6-digit OTP, zero-padded.
// crypto/rand with big.Int avoids modulo bias.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateResetToken generates a 64-hex-char password reset token from 32
// random bytes.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hex digest of a raw credential. No salt: the
// raw values are generated with cryptographic randomness and are single-use.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digests in constant time. The raw input is
// attacker-controlled at verify time, so the final comparison must not leak
// through timing.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// IsHexToken reports whether raw is a well-formed token of n hex characters.
func IsHexToken(raw string, n int) bool {
	if len(raw) != n {
		return false
	}
	_, err := hex.DecodeString(raw)
	return err == nil
}
