package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ==============================================
// SYNC JOB MODEL
// ==============================================

// SyncJob tracks a background maintenance run. Status lives in the database so
// it survives restarts and is visible from every server instance.
type SyncJob struct {
	ID        string      `db:"id"` // uuid
	Kind      string      `db:"kind"`
	Status    string      `db:"status"`
	Processed int         `db:"processed"`
	Error     pgtype.Text `db:"error"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

const (
	JobKindCleanup = "cleanup"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
