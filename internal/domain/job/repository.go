package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages system job persistence
type Repository interface {
	List(ctx context.Context) ([]*Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Job, error)
	Create(ctx context.Context, j *Job) error
	// Save writes the mutable state of an existing job.
	Save(ctx context.Context, j *Job) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrJobNotFound indicates a missing job
type ErrJobNotFound struct {
	ID uuid.UUID
}

func (e ErrJobNotFound) Error() string {
	return "job not found: " + e.ID.String()
}

// Is matches any ErrJobNotFound when the target carries no ID.
func (e ErrJobNotFound) Is(target error) bool {
	t, ok := target.(ErrJobNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrNotRetryable is returned when retrying a job that has not failed.
type ErrNotRetryable struct {
	ID     uuid.UUID
	Status Status
}

func (e ErrNotRetryable) Error() string {
	return fmt.Sprintf("job %s cannot be retried from status %s", e.ID, e.Status)
}

// ErrMaxRetriesExceeded is returned when a job has used all its retries.
type ErrMaxRetriesExceeded struct {
	ID      uuid.UUID
	Retries int
	Max     int
}

func (e ErrMaxRetriesExceeded) Error() string {
	return fmt.Sprintf("job %s reached the retry limit (%d of %d)", e.ID, e.Retries, e.Max)
}

// ErrNotCancellable is returned when cancelling a finished job.
type ErrNotCancellable struct {
	ID     uuid.UUID
	Status Status
}

func (e ErrNotCancellable) Error() string {
	return fmt.Sprintf("job %s cannot be cancelled from status %s", e.ID, e.Status)
}
