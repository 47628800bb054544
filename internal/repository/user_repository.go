package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

const uniqueViolationCode = "23505"

// ==============================================
// USER REPOSITORY
// ==============================================

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// ==============================================
// CREATE USER
// ==============================================

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, phone, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Phone,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// ==============================================
// GET USER (Read Operations)
// ==============================================

const userColumns = `id, name, phone, email, password_hash, is_active,
	       failed_login_attempts, locked_until,
	       created_at, updated_at, last_login_at`

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.FailedLoginAttempts,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, userID))
}

// GetUserByPhone retrieves a user by normalized phone number
func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, phone))
}

// GetUserByEmail retrieves a user by normalized email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

// ==============================================
// UPDATE OPERATIONS
// ==============================================

// UpdatePassword replaces the stored password value with a bcrypt hash. Also
// used by the lazy plaintext migration on first successful login.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int) error {
	query := `
		UPDATE users
		SET last_login_at = NOW(), failed_login_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// IncrementFailedLogins bumps the counter atomically and returns the new value.
func (r *UserRepository) IncrementFailedLogins(ctx context.Context, userID int) (int, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts
	`

	var attempts int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("failed to increment failed logins: %w", err)
	}

	return attempts, nil
}

func (r *UserRepository) LockAccount(ctx context.Context, userID int, until time.Time) error {
	query := `
		UPDATE users
		SET locked_until = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, userID, until); err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}

	return nil
}

func (r *UserRepository) UnlockAccount(ctx context.Context, userID int) error {
	query := `
		UPDATE users
		SET locked_until = NULL, failed_login_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to unlock account: %w", err)
	}

	return nil
}
