package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrCredentialNotFound = errors.New("credential not found")
)

// ==============================================
// CREDENTIAL REPOSITORY
// ==============================================

type CredentialRepository struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// ==============================================
// ISSUANCE
// ==============================================

// Replace deletes any prior credential for (subject, purpose) and inserts the
// new one in a single transaction, so concurrent issuance requests can never
// leave two live credentials for a subject.
func (r *CredentialRepository) Replace(ctx context.Context, cred *models.Credential) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `
		DELETE FROM credentials
		WHERE subject = $1 AND purpose = $2
	`
	if _, err := tx.Exec(ctx, deleteQuery, cred.Subject, cred.Purpose); err != nil {
		return fmt.Errorf("failed to invalidate prior credential: %w", err)
	}

	insertQuery := `
		INSERT INTO credentials (subject, purpose, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		cred.Subject,
		cred.Purpose,
		cred.SecretHash,
		cred.ExpiresAt,
	).Scan(&cred.ID, &cred.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit credential: %w", err)
	}

	return nil
}

// ==============================================
// LOOKUP
// ==============================================

// GetActive returns the latest unconsumed credential for a subject. Expiry and
// the attempt ceiling are enforced by the verifier, which invalidates the row.
func (r *CredentialRepository) GetActive(ctx context.Context, subject, purpose string) (*models.Credential, error) {
	query := `
		SELECT id, subject, purpose, secret_hash, attempts, expires_at, consumed_at, created_at
		FROM credentials
		WHERE subject = $1 AND purpose = $2 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var cred models.Credential
	err := r.db.QueryRow(ctx, query, subject, purpose).Scan(
		&cred.ID,
		&cred.Subject,
		&cred.Purpose,
		&cred.SecretHash,
		&cred.Attempts,
		&cred.ExpiresAt,
		&cred.ConsumedAt,
		&cred.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return &cred, nil
}

// ==============================================
// VERIFICATION STATE
// ==============================================

// IncrementAttempts bumps the failure counter atomically and returns the new
// count, so two concurrent wrong guesses cannot collapse into one.
func (r *CredentialRepository) IncrementAttempts(ctx context.Context, credID int64) (int32, error) {
	query := `
		UPDATE credentials
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int32
	if err := r.db.QueryRow(ctx, query, credID).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCredentialNotFound
		}
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}

	return attempts, nil
}

// Consume marks a credential used. Returns false when it was already consumed,
// so a correct code can never verify twice.
func (r *CredentialRepository) Consume(ctx context.Context, credID int64) (bool, error) {
	query := `
		UPDATE credentials
		SET consumed_at = NOW()
		WHERE id = $1 AND consumed_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, credID)
	if err != nil {
		return false, fmt.Errorf("failed to consume credential: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ConsumeAndSetPassword consumes a reset token and writes the new password
// hash in one transaction: once the token is spent the password change is
// committed with it, and a spent token is never verifiable again.
func (r *CredentialRepository) ConsumeAndSetPassword(ctx context.Context, credID int64, userID int, passwordHash string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	consumeQuery := `
		UPDATE credentials
		SET consumed_at = NOW()
		WHERE id = $1 AND consumed_at IS NULL
	`
	tag, err := tx.Exec(ctx, consumeQuery, credID)
	if err != nil {
		return fmt.Errorf("failed to consume credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	passwordQuery := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, passwordQuery, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit password reset: %w", err)
	}

	return nil
}

// Delete invalidates a credential outright (expired or over the attempt
// ceiling).
func (r *CredentialRepository) Delete(ctx context.Context, credID int64) error {
	query := `DELETE FROM credentials WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, credID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}

// ==============================================
// CLEANUP
// ==============================================

// DeleteExpired removes credentials whose expiry passed more than olderThan
// ago. Used by the maintenance sync job.
func (r *CredentialRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM credentials
		WHERE expires_at < $1
	`

	cutoff := time.Now().Add(-olderThan)
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired credentials: %w", err)
	}

	return tag.RowsAffected(), nil
}
