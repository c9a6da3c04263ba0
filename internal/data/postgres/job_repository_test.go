package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/resale-ops/internal/domain/job"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobCols = []string{"id", "organisation_id", "type", "status", "supplier_id", "started_at", "finished_at",
	"total_rows", "success_rows", "error_rows", "duplicate_rows", "error_messages", "retry_count",
	"last_error", "payload", "created_at", "updated_at"}

func testJob(t *testing.T) *job.Job {
	t.Helper()
	j, err := job.NewImportJob("org-1", uuid.New(), job.ImportPayload{Filename: "list.csv", ExchangeRate: decimal.RequireFromString("0.9")})
	require.NoError(t, err)
	return j
}

func jobRow(j *job.Job, messages string) *pgxmock.Rows {
	return pgxmock.NewRows(jobCols).AddRow(j.ID, j.OrganisationID, j.Type, j.Status, j.SupplierID, j.StartedAt,
		j.FinishedAt, j.Total, j.Success, j.Errors, j.Duplicates, []byte(messages), j.RetryCount, j.LastError,
		[]byte(j.Payload), j.CreatedAt, j.UpdatedAt)
}

func TestJobRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &JobRepository{querier: mock, logger: newTestLogger()}
	j := testJob(t)

	mock.ExpectExec("INSERT INTO system_jobs").
		WithArgs(j.ID, j.OrganisationID, j.Type, j.Status, j.SupplierID, j.StartedAt, j.FinishedAt,
			0, 0, 0, 0, []byte("[]"), 0, "", []byte(j.Payload), j.CreatedAt, j.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(ctx, j))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &JobRepository{querier: mock, logger: newTestLogger()}
	j := testJob(t)
	j.Fail("boom")

	mock.ExpectQuery(`FROM system_jobs WHERE id = \$1`).WithArgs(j.ID).
		WillReturnRows(jobRow(j, `["row 2: missing brand"]`))
	got, err := repo.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Equal(t, []string{"row 2: missing brand"}, got.ErrorMessages)
	require.NotNil(t, got.FinishedAt)

	p, err := got.ImportPayload()
	require.NoError(t, err)
	assert.Equal(t, "list.csv", p.Filename)

	mock.ExpectQuery(`FROM system_jobs WHERE id = \$1 FOR UPDATE`).WithArgs(j.ID).WillReturnError(pgx.ErrNoRows)
	_, err = repo.LockForUpdate(ctx, j.ID)
	assert.Equal(t, job.ErrJobNotFound{ID: j.ID}, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_Save(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &JobRepository{querier: mock, logger: newTestLogger()}
	j := testJob(t)
	j.Start()
	j.Complete(job.Summary{Total: 2, Success: 1, Duplicates: 1})

	mock.ExpectExec("UPDATE system_jobs").
		WithArgs(job.StatusCompleted, j.StartedAt, j.FinishedAt, 2, 1, 0, 1, []byte("[]"), 0, "", j.UpdatedAt, j.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Save(ctx, j))

	mock.ExpectExec("UPDATE system_jobs").WithArgs(anyArgs(12)...).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.Equal(t, job.ErrJobNotFound{ID: j.ID}, repo.Save(ctx, j))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &JobRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectQuery("FROM system_jobs GROUP BY status").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).AddRow(job.StatusFailed, 2).AddRow(job.StatusCompleted, 9))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[job.StatusFailed])
	assert.Equal(t, 9, counts[job.StatusCompleted])
	assert.NoError(t, mock.ExpectationsWereMet())
}
