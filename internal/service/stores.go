package service

import (
	"context"
	"time"

	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// STORE INTERFACES (satisfied by internal/repository, mocked in tests)
// ==============================================

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int) error
	IncrementFailedLogins(ctx context.Context, userID int) (int, error)
	LockAccount(ctx context.Context, userID int, until time.Time) error
	UnlockAccount(ctx context.Context, userID int) error
}

type CredentialStore interface {
	Replace(ctx context.Context, cred *models.Credential) error
	GetActive(ctx context.Context, subject, purpose string) (*models.Credential, error)
	IncrementAttempts(ctx context.Context, credID int64) (int32, error)
	Consume(ctx context.Context, credID int64) (bool, error)
	ConsumeAndSetPassword(ctx context.Context, credID int64, userID int, passwordHash string) error
	Delete(ctx context.Context, credID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	GetByReceipt(ctx context.Context, receipt string) (*models.PaymentOrder, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error)
	MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) error
	MarkFailed(ctx context.Context, gatewayOrderID, paymentID, reason string) error
	UpdateRefundStatus(ctx context.Context, paymentID, status string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	DeleteDelivered(ctx context.Context, olderThan time.Duration) (int64, error)
}

type JobStore interface {
	Create(ctx context.Context, job *models.SyncJob) error
	Get(ctx context.Context, jobID string) (*models.SyncJob, error)
	MarkRunning(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, processed int) error
	MarkFailed(ctx context.Context, jobID string, jobErr string) error
}

// Notifier enqueues outbox rows; actual delivery happens in the worker.
type Notifier interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
	EnqueueWhatsApp(ctx context.Context, toPhone, fallbackEmail, body string) error
}

// IssueLimiter throttles credential issuance per subject.
type IssueLimiter interface {
	Allow(ctx context.Context, subject string) error
}
