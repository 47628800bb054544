package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ==============================================
// PAYMENT ORDER MODEL
// ==============================================

// PaymentOrder mirrors a Razorpay order. It is never marked paid until the
// gateway signature has been verified.
type PaymentOrder struct {
	ID             int64       `db:"id"`
	Receipt        string      `db:"receipt"` // merchant-side id, unique
	GatewayOrderID string      `db:"gateway_order_id"`
	PaymentID      pgtype.Text `db:"payment_id"`
	Amount         int64       `db:"amount"` // smallest currency unit (paise)
	Currency       string      `db:"currency"`
	Status         string      `db:"status"`
	FailureReason  pgtype.Text `db:"failure_reason"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// ==============================================
// ORDER STATUS CONSTANTS
// ==============================================
const (
	OrderStatusCreated      = "created"
	OrderStatusPaid         = "paid"
	OrderStatusFailed       = "failed"
	OrderStatusRefunded     = "refunded"
	OrderStatusRefundFailed = "refund_failed"
)

// ==============================================
// WEBHOOK EVENT TYPES
// ==============================================
const (
	WebhookEventPaymentCaptured = "payment.captured"
	WebhookEventPaymentFailed   = "payment.failed"
	WebhookEventRefundProcessed = "refund.processed"
	WebhookEventRefundFailed    = "refund.failed"
)
