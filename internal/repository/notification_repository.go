package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// NOTIFICATION REPOSITORY (outbox)
// ==============================================

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ==============================================
// ENQUEUE
// ==============================================

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, channel, recipient, fallback_recipient, subject, body, status, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		n.ID,
		n.Channel,
		n.Recipient,
		n.FallbackRecipient,
		n.Subject,
		n.Body,
		models.NotificationStatusPending,
	).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	return nil
}

// ==============================================
// CLAIM / DRAIN
// ==============================================

// ClaimPending leases up to limit due rows for delivery. SKIP LOCKED keeps
// concurrent dispatcher instances off the same rows; the lease (pushing
// next_attempt_at forward) makes a crashed dispatcher's claim expire instead
// of sticking.
func (r *NotificationRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]models.Notification, error) {
	query := `
		UPDATE notifications
		SET next_attempt_at = NOW() + $3
		WHERE id IN (
			SELECT id FROM notifications
			WHERE status = $1 AND next_attempt_at <= NOW()
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, channel, recipient, fallback_recipient, subject, body,
		          status, attempts, last_error, next_attempt_at, created_at, sent_at
	`

	rows, err := r.db.Query(ctx, query, models.NotificationStatusPending, limit, lease)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending notifications: %w", err)
	}
	defer rows.Close()

	var batch []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID,
			&n.Channel,
			&n.Recipient,
			&n.FallbackRecipient,
			&n.Subject,
			&n.Body,
			&n.Status,
			&n.Attempts,
			&n.LastError,
			&n.NextAttemptAt,
			&n.CreatedAt,
			&n.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		batch = append(batch, n)
	}

	return batch, rows.Err()
}

// ==============================================
// DELIVERY OUTCOMES
// ==============================================

func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	query := `
		UPDATE notifications
		SET status = $2, sent_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, id, models.NotificationStatusSent); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// RecordFailure bumps the attempt counter atomically, schedules a backoff
// retry, and flips the row to failed once the ceiling is hit. Returns the new
// attempt count.
func (r *NotificationRepository) RecordFailure(ctx context.Context, id, lastError string, backoff time.Duration) (int32, error) {
	query := `
		UPDATE notifications
		SET attempts = attempts + 1,
		    last_error = $2,
		    next_attempt_at = NOW() + $3,
		    status = CASE WHEN attempts + 1 >= $4 THEN 'failed' ELSE status END
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int32
	err := r.db.QueryRow(ctx, query, id, lastError, backoff, models.NotificationMaxAttempts).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("failed to record notification failure: %w", err)
	}

	return attempts, nil
}

// ==============================================
// CLEANUP
// ==============================================

// DeleteDelivered removes sent rows older than the cutoff. Used by the
// maintenance sync job.
func (r *NotificationRepository) DeleteDelivered(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE status = $1 AND sent_at < $2
	`

	cutoff := time.Now().Add(-olderThan)
	tag, err := r.db.Exec(ctx, query, models.NotificationStatusSent, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete delivered notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}
