package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// OUTBOX DISPATCHER
// ==============================================

// OutboxStore is the slice of the notification repository the worker needs.
type OutboxStore interface {
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkSent(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id, lastError string, backoff time.Duration) (int32, error)
}

type EmailSender interface {
	Send(to, subject, body string) error
}

type WhatsAppSender interface {
	Send(ctx context.Context, toPhone, body string) error
}

// Outbox drains pending notification rows on an interval, retrying failures
// with backoff. This replaces unawaited goroutine sends: a row is only gone
// once a provider accepted the message or the attempt ceiling was hit.
type Outbox struct {
	store    OutboxStore
	email    EmailSender
	whatsapp WhatsAppSender
	interval time.Duration
	log      *zap.Logger
}

func NewOutbox(store OutboxStore, email EmailSender, whatsapp WhatsAppSender, interval time.Duration, log *zap.Logger) *Outbox {
	return &Outbox{
		store:    store,
		email:    email,
		whatsapp: whatsapp,
		interval: interval,
		log:      log,
	}
}

const (
	batchSize    = 20
	claimLease   = time.Minute
	retryBackoff = 30 * time.Second
	sendTimeout  = 15 * time.Second
)

// Run blocks until ctx is cancelled.
func (w *Outbox) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.dispatchOnce(ctx)
		}
	}
}

func (w *Outbox) dispatchOnce(ctx context.Context) {
	batch, err := w.store.ClaimPending(ctx, batchSize, claimLease)
	if err != nil {
		w.log.Error("failed to claim pending notifications", zap.Error(err))
		return
	}

	for _, n := range batch {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := w.send(sendCtx, n)
		cancel()

		if err == nil {
			if markErr := w.store.MarkSent(ctx, n.ID); markErr != nil {
				w.log.Error("failed to mark notification sent", zap.String("id", n.ID), zap.Error(markErr))
			}
			continue
		}

		// Provider error details stay in server logs.
		w.log.Warn("notification delivery failed",
			zap.String("id", n.ID),
			zap.String("channel", n.Channel),
			zap.Error(err))

		attempts, recErr := w.store.RecordFailure(ctx, n.ID, err.Error(), retryBackoff)
		if recErr != nil {
			w.log.Error("failed to record notification failure", zap.String("id", n.ID), zap.Error(recErr))
			continue
		}

		// Once a WhatsApp send is out of attempts, fall back to email when
		// the user has one on file.
		if attempts >= models.NotificationMaxAttempts &&
			n.Channel == models.NotificationChannelWhatsApp &&
			n.FallbackRecipient.Valid {
			w.enqueueFallback(ctx, n)
		}
	}
}

func (w *Outbox) send(ctx context.Context, n models.Notification) error {
	switch n.Channel {
	case models.NotificationChannelEmail:
		return w.email.Send(n.Recipient, n.Subject, n.Body)
	case models.NotificationChannelWhatsApp:
		return w.whatsapp.Send(ctx, n.Recipient, n.Body)
	default:
		return fmt.Errorf("unknown channel %q", n.Channel)
	}
}

func (w *Outbox) enqueueFallback(ctx context.Context, n models.Notification) {
	fallback := &models.Notification{
		ID:        uuid.NewString(),
		Channel:   models.NotificationChannelEmail,
		Recipient: n.FallbackRecipient.String,
		Subject:   "Your verification code",
		Body:      n.Body,
	}
	if err := w.store.Create(ctx, fallback); err != nil {
		w.log.Error("failed to enqueue email fallback", zap.String("whatsapp_id", n.ID), zap.Error(err))
		return
	}

	w.log.Info("enqueued email fallback for failed whatsapp send",
		zap.String("whatsapp_id", n.ID),
		zap.String("fallback_id", fallback.ID))
}
