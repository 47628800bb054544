package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

const (
	cooldownPrefix = "otp:cooldown:"
	countPrefix    = "otp:count:"
)

// OTPLimiter throttles credential issuance per subject: a fixed cooldown
// between sends plus an hourly ceiling. Throttling lives in Redis; the
// credentials themselves stay in Postgres.
type OTPLimiter struct {
	rdb      *redis.Client
	cooldown time.Duration
	limit    int
	window   time.Duration
}

func NewOTPLimiter(rdb *redis.Client) *OTPLimiter {
	return &OTPLimiter{
		rdb:      rdb,
		cooldown: models.OTPResendCooldown,
		limit:    models.OTPHourlyLimit,
		window:   time.Hour,
	}
}

// Allow returns ErrResendCooldown or ErrTooManyRequests when the subject is
// over its issuance limits.
func (l *OTPLimiter) Allow(ctx context.Context, subject string) error {
	ok, err := l.rdb.SetNX(ctx, cooldownPrefix+subject, 1, l.cooldown).Result()
	if err != nil {
		return fmt.Errorf("failed to check resend cooldown: %w", err)
	}
	if !ok {
		return models.ErrResendCooldown
	}

	countKey := countPrefix + subject
	n, err := l.rdb.Incr(ctx, countKey).Result()
	if err != nil {
		return fmt.Errorf("failed to count issuances: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, countKey, l.window).Err(); err != nil {
			return fmt.Errorf("failed to expire issuance counter: %w", err)
		}
	}
	if n > int64(l.limit) {
		return models.ErrTooManyRequests
	}

	return nil
}
