package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// NOTIFICATION SERVICE
// ==============================================

// NotificationService writes outbox rows. The worker in internal/worker drains
// them with retries; callers get delivery guarantees beyond fire-and-forget.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	return s.store.Create(ctx, &models.Notification{
		ID:        uuid.NewString(),
		Channel:   models.NotificationChannelEmail,
		Recipient: to,
		Subject:   subject,
		Body:      body,
	})
}

func (s *NotificationService) EnqueueWhatsApp(ctx context.Context, toPhone, fallbackEmail, body string) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		Channel:   models.NotificationChannelWhatsApp,
		Recipient: toPhone,
		Body:      body,
	}
	if fallbackEmail != "" {
		n.FallbackRecipient = pgtype.Text{String: fallbackEmail, Valid: true}
	}
	return s.store.Create(ctx, n)
}
