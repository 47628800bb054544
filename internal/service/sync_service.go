package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/models"
	"github.com/rahul3988/updnefol-backend/internal/repository"
)

// ==============================================
// SYNC SERVICE
// ==============================================

// SyncService runs admin-triggered maintenance jobs. Job status is persisted,
// so a restart or another instance can still answer status polls.
type SyncService struct {
	jobs          JobStore
	creds         CredentialStore
	notifications NotificationStore
	log           *zap.Logger
}

func NewSyncService(jobs JobStore, creds CredentialStore, notifications NotificationStore, log *zap.Logger) *SyncService {
	return &SyncService{
		jobs:          jobs,
		creds:         creds,
		notifications: notifications,
		log:           log,
	}
}

const (
	jobTimeout              = 5 * time.Minute
	expiredCredentialMaxAge = 24 * time.Hour
	deliveredMaxAge         = 7 * 24 * time.Hour
)

// Start persists a pending job row and kicks off the run in the background.
// The returned job carries the id for status polling.
func (s *SyncService) Start(ctx context.Context, kind string) (*models.SyncJob, error) {
	if kind != models.JobKindCleanup {
		return nil, fmt.Errorf("unknown job kind %q", kind)
	}

	job := &models.SyncJob{
		ID:     uuid.NewString(),
		Kind:   kind,
		Status: models.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	go s.run(job.ID)

	return job, nil
}

func (s *SyncService) Get(ctx context.Context, jobID string) (*models.SyncJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, models.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// run is detached from the request context: the job outlives the triggering
// request.
func (s *SyncService) run(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.jobs.MarkRunning(ctx, jobID); err != nil {
		s.log.Error("failed to mark sync job running", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	expired, err := s.creds.DeleteExpired(ctx, expiredCredentialMaxAge)
	if err != nil {
		s.fail(ctx, jobID, err)
		return
	}

	delivered, err := s.notifications.DeleteDelivered(ctx, deliveredMaxAge)
	if err != nil {
		s.fail(ctx, jobID, err)
		return
	}

	processed := int(expired + delivered)
	if err := s.jobs.MarkCompleted(ctx, jobID, processed); err != nil {
		s.log.Error("failed to mark sync job completed", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	s.log.Info("sync job completed",
		zap.String("job_id", jobID),
		zap.Int64("expired_credentials", expired),
		zap.Int64("delivered_notifications", delivered))
}

func (s *SyncService) fail(ctx context.Context, jobID string, err error) {
	s.log.Error("sync job failed", zap.String("job_id", jobID), zap.Error(err))
	if markErr := s.jobs.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
		s.log.Error("failed to mark sync job failed", zap.String("job_id", jobID), zap.Error(markErr))
	}
}
