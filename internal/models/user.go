package models

import (
	"database/sql"
	"time"
)

// ==============================================
// USER MODEL (Database mapping)
// ==============================================

// User represents a storefront customer account.
// PasswordHash may still hold a legacy plaintext value for rows imported from
// the old system; the login path re-hashes those transparently.
type User struct {
	ID                  int          `db:"id"`
	Name                string       `db:"name"`
	Phone               string       `db:"phone"`
	Email               string       `db:"email"`
	PasswordHash        string       `db:"password_hash"`
	IsActive            bool         `db:"is_active"`
	FailedLoginAttempts int          `db:"failed_login_attempts"`
	LockedUntil         sql.NullTime `db:"locked_until"`
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
	LastLoginAt         sql.NullTime `db:"last_login_at"`
}

// IsLocked checks if account is currently locked
func (u *User) IsLocked() bool {
	return u.LockedUntil.Valid && u.LockedUntil.Time.After(time.Now())
}
