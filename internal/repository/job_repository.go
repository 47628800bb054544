package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrJobNotFound = errors.New("sync job not found")
)

// ==============================================
// JOB REPOSITORY
// ==============================================

// JobRepository persists background job status so it survives restarts and is
// readable from any server instance.
type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *models.SyncJob) error {
	query := `
		INSERT INTO sync_jobs (id, kind, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, job.ID, job.Kind, job.Status).
		Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sync job: %w", err)
	}

	return nil
}

func (r *JobRepository) Get(ctx context.Context, jobID string) (*models.SyncJob, error) {
	query := `
		SELECT id, kind, status, processed, error, created_at, updated_at
		FROM sync_jobs
		WHERE id = $1
	`

	var job models.SyncJob
	err := r.db.QueryRow(ctx, query, jobID).Scan(
		&job.ID,
		&job.Kind,
		&job.Status,
		&job.Processed,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}

	return &job, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, jobID string) error {
	return r.setStatus(ctx, jobID, models.JobStatusRunning, 0, "")
}

func (r *JobRepository) MarkCompleted(ctx context.Context, jobID string, processed int) error {
	return r.setStatus(ctx, jobID, models.JobStatusCompleted, processed, "")
}

func (r *JobRepository) MarkFailed(ctx context.Context, jobID string, jobErr string) error {
	return r.setStatus(ctx, jobID, models.JobStatusFailed, 0, jobErr)
}

func (r *JobRepository) setStatus(ctx context.Context, jobID, status string, processed int, jobErr string) error {
	query := `
		UPDATE sync_jobs
		SET status = $2,
		    processed = CASE WHEN $3 > 0 THEN $3 ELSE processed END,
		    error = NULLIF($4, ''),
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, jobID, status, processed, jobErr)
	if err != nil {
		return fmt.Errorf("failed to update sync job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}
