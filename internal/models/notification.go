package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ==============================================
// NOTIFICATION (OUTBOX) MODEL
// ==============================================

// Notification is a pending outbound message. Rows are written by services and
// drained by the outbox worker, which retries with backoff instead of the old
// fire-and-forget sends.
type Notification struct {
	ID                string             `db:"id"` // uuid
	Channel           string             `db:"channel"`
	Recipient         string             `db:"recipient"`
	FallbackRecipient pgtype.Text        `db:"fallback_recipient"` // email used when a WhatsApp send fails for good
	Subject           string             `db:"subject"`
	Body              string             `db:"body"`
	Status            string             `db:"status"`
	Attempts          int32              `db:"attempts"`
	LastError         pgtype.Text        `db:"last_error"`
	NextAttemptAt     time.Time          `db:"next_attempt_at"`
	CreatedAt         time.Time          `db:"created_at"`
	SentAt            pgtype.Timestamptz `db:"sent_at"`
}

// ==============================================
// CHANNEL / STATUS CONSTANTS
// ==============================================
const (
	NotificationChannelEmail    = "email"
	NotificationChannelWhatsApp = "whatsapp"

	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"

	NotificationMaxAttempts = 5
)
