package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/platform/persistence"
)

const jobColumns = `id, organisation_id, type, status, supplier_id, started_at, finished_at,
		total_rows, success_rows, error_rows, duplicate_rows, error_messages, retry_count,
		last_error, payload, created_at, updated_at`

// JobRepository implements the job.Repository interface for PostgreSQL
type JobRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewJobRepository creates a new PostgreSQL job repository
func NewJobRepository(logger *slog.Logger, db *persistence.PostgresDB) job.Repository {
	return &JobRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *JobRepository) WithTx(tx pgx.Tx) job.Repository {
	return &JobRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		j        job.Job
		messages []byte
		payload  []byte
	)
	err := row.Scan(&j.ID, &j.OrganisationID, &j.Type, &j.Status, &j.SupplierID, &j.StartedAt, &j.FinishedAt,
		&j.Total, &j.Success, &j.Errors, &j.Duplicates, &messages, &j.RetryCount,
		&j.LastError, &payload, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.ErrorMessages = []string{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &j.ErrorMessages); err != nil {
			return nil, fmt.Errorf("failed to decode job error messages: %w", err)
		}
	}
	j.Payload = payload
	return &j, nil
}

func encodeErrorMessages(messages []string) ([]byte, error) {
	if messages == nil {
		messages = []string{}
	}
	return json.Marshal(messages)
}

// List returns every job, newest first.
func (r *JobRepository) List(ctx context.Context) ([]*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM system_jobs ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list jobs", "error", err)
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*job.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			r.logger.Error("Failed to scan job", "error", err)
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over jobs", "error", err)
		return nil, fmt.Errorf("error iterating over jobs: %w", err)
	}
	return jobs, nil
}

// GetByID retrieves a job, returning nil when it does not exist.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM system_jobs WHERE id = $1`

	j, err := scanJob(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get job", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// LockForUpdate reads the job holding a row lock until the transaction ends.
func (r *JobRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM system_jobs WHERE id = $1 FOR UPDATE`

	j, err := scanJob(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound{ID: id}
		}
		r.logger.Error("Failed to lock job for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock job for update: %w", err)
	}
	return j, nil
}

// Create stores a new job.
func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	messages, err := encodeErrorMessages(j.ErrorMessages)
	if err != nil {
		return fmt.Errorf("failed to encode job error messages: %w", err)
	}
	payload := []byte(j.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := `
		INSERT INTO system_jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.querier.Exec(ctx, query, j.ID, j.OrganisationID, j.Type, j.Status, j.SupplierID, j.StartedAt,
		j.FinishedAt, j.Total, j.Success, j.Errors, j.Duplicates, messages, j.RetryCount, j.LastError,
		payload, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create job", "id", j.ID.String(), "error", err)
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Save writes the mutable state of an existing job.
func (r *JobRepository) Save(ctx context.Context, j *job.Job) error {
	messages, err := encodeErrorMessages(j.ErrorMessages)
	if err != nil {
		return fmt.Errorf("failed to encode job error messages: %w", err)
	}

	query := `
		UPDATE system_jobs
		SET status = $1, started_at = $2, finished_at = $3, total_rows = $4, success_rows = $5,
			error_rows = $6, duplicate_rows = $7, error_messages = $8, retry_count = $9,
			last_error = $10, updated_at = $11
		WHERE id = $12
	`

	result, err := r.querier.Exec(ctx, query, j.Status, j.StartedAt, j.FinishedAt, j.Total, j.Success,
		j.Errors, j.Duplicates, messages, j.RetryCount, j.LastError, j.UpdatedAt, j.ID)
	if err != nil {
		r.logger.Error("Failed to save job", "id", j.ID.String(), "status", string(j.Status), "error", err)
		return fmt.Errorf("failed to save job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return job.ErrJobNotFound{ID: j.ID}
	}
	return nil
}

// CountByStatus reports how many jobs sit in each status.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[job.Status]int, error) {
	rows, err := r.querier.Query(ctx, `SELECT status, COUNT(*) FROM system_jobs GROUP BY status`)
	if err != nil {
		r.logger.Error("Failed to count jobs", "error", err)
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := map[job.Status]int{}
	for rows.Next() {
		var (
			status job.Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over job counts: %w", err)
	}
	return counts, nil
}
