package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/platform/messaging/producers"
	"github.com/resale-ops/internal/platform/persistence"
)

// ErrRetryUnavailable is returned when a job cannot be rerun because its
// input was not kept.
var ErrRetryUnavailable = errors.New("job has no stored import file to retry from")

// ErrQueueUnavailable is returned for queued work when no import topic is
// configured.
var ErrQueueUnavailable = errors.New("import queue is not configured")

// JobServiceImpl implements the JobService interface
type JobServiceImpl struct {
	jobRepo      job.Repository
	recorder     audit.Recorder
	txRunner     persistence.TxRunner
	producer     producers.MessagePublisher
	maxRetries   int
	defaultOrgID string
	logger       *slog.Logger
}

func NewJobService(
	logger *slog.Logger,
	defaultOrgID string,
	maxRetries int,
	jobRepo job.Repository,
	recorder audit.Recorder,
	txRunner persistence.TxRunner,
	producer producers.MessagePublisher,
) JobService {
	return &JobServiceImpl{
		jobRepo:      jobRepo,
		recorder:     recorder,
		txRunner:     txRunner,
		producer:     producer,
		maxRetries:   maxRetries,
		defaultOrgID: defaultOrgID,
		logger:       logger,
	}
}

func (s *JobServiceImpl) List(ctx context.Context, filter JobFilter) ([]*job.Job, error) {
	all, err := s.jobRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	org := organisationOf(ctx, s.defaultOrgID)
	out := make([]*job.Job, 0, len(all))
	for _, j := range all {
		if inOrganisation(j.OrganisationID, org) && filter.match(j) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *JobServiceImpl) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	j, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, job.ErrJobNotFound{ID: id}
	}
	return j, nil
}

// Retry requeues a failed job and publishes it for the worker again. Only
// failed jobs under the retry limit qualify.
func (s *JobServiceImpl) Retry(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	if s.producer == nil {
		return nil, ErrQueueUnavailable
	}

	var (
		retried *job.Job
		payload job.ImportPayload
	)
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		jobs := s.jobRepo.WithTx(tx)

		j, err := jobs.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := j.CanRetry(s.maxRetries); err != nil {
			return err
		}
		payload, err = j.ImportPayload()
		if err != nil {
			return fmt.Errorf("failed to decode job payload: %w", err)
		}
		if payload.ObjectKey == "" || j.SupplierID == nil {
			return ErrRetryUnavailable
		}

		if err := j.Requeue(s.maxRetries); err != nil {
			return err
		}
		if err := jobs.Save(ctx, j); err != nil {
			return err
		}

		event, err := activity.NewEvent(j.OrganisationID, actorAPI, activity.TypeJobRetried, activity.EntityJob, j.ID.String(), map[string]any{
			"retryCount": j.RetryCount,
			"jobType":    j.Type,
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		if err := s.recorder.Record(ctx, tx, event); err != nil {
			return err
		}

		retried = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	req := shared.ImportRequest{
		JobID:          retried.ID,
		SupplierID:     *retried.SupplierID,
		OrganisationID: retried.OrganisationID,
		Filename:       payload.Filename,
		ObjectKey:      payload.ObjectKey,
		ExchangeRate:   payload.ExchangeRate,
		RecordActivity: payload.RecordActivity,
		Actor:          payload.Actor,
		CorrelationID:  middleware.CorrelationIDFromContext(ctx),
		Timestamp:      time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, retried.SupplierID.String(), req); err != nil {
		retried.Fail("failed to enqueue retry: " + err.Error())
		if saveErr := s.jobRepo.Save(ctx, retried); saveErr != nil {
			s.logger.Error("Failed to mark retried job failed", "job_id", id.String(), "error", saveErr)
		}
		return nil, err
	}

	s.logger.Info("Job requeued", "job_id", id.String(), "retry_count", retried.RetryCount)
	return retried, nil
}

// Cancel stops a queued or running job. A running import finishes its
// current row loop but keeps the cancelled status.
func (s *JobServiceImpl) Cancel(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	var cancelled *job.Job
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		jobs := s.jobRepo.WithTx(tx)

		j, err := jobs.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := j.Cancel(); err != nil {
			return err
		}
		if err := jobs.Save(ctx, j); err != nil {
			return err
		}

		event, err := activity.NewEvent(j.OrganisationID, actorAPI, activity.TypeJobCancelled, activity.EntityJob, j.ID.String(), map[string]any{
			"jobType": j.Type,
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		if err := s.recorder.Record(ctx, tx, event); err != nil {
			return err
		}

		cancelled = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Job cancelled", "job_id", id.String())
	return cancelled, nil
}
