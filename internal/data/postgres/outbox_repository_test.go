package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/resale-ops/internal/domain/outbox"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_WithTx(t *testing.T) {
	repo := &OutboxRepository{logger: newTestLogger()}

	mockTx := pgx.Tx(nil)
	txRepo := repo.WithTx(mockTx)

	outboxRepo, ok := txRepo.(*OutboxRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, outboxRepo.querier)
	assert.Equal(t, repo.logger, outboxRepo.logger)
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	msg := &outbox.Message{
		EventID:   uuid.New(),
		Payload:   []byte(`{"type":"product.sold"}`),
		Status:    shared.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectQuery("INSERT INTO activity_outbox").
		WithArgs(msg.EventID, []byte(msg.Payload), msg.Status, 0, msg.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, repo.Create(ctx, msg))
	assert.Equal(t, int64(42), msg.ID)

	mock.ExpectQuery("INSERT INTO activity_outbox").WithArgs(anyArgs(5)...).WillReturnError(errors.New("unique violation"))
	assert.ErrorContains(t, repo.Create(ctx, msg), "failed to create outbox message")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	eventID := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "event_id", "payload", "status", "attempts", "created_at", "last_attempt_at"}).
		AddRow(int64(1), eventID, []byte(`{}`), shared.OutboxStatusPending, 2, now, &now)
	mock.ExpectQuery("FROM activity_outbox").WithArgs(shared.OutboxStatusPending, 50).WillReturnRows(rows)

	msgs, err := repo.GetPending(ctx, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, eventID, msgs[0].EventID)
	assert.Equal(t, 2, msgs[0].Attempts)
	require.NotNil(t, msgs[0].LastAttemptAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_UpdateStatusAndAttempts(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectExec("UPDATE activity_outbox").
		WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.UpdateStatus(ctx, 7, shared.OutboxStatusProcessed))

	mock.ExpectExec("UPDATE activity_outbox").
		WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.Equal(t, outbox.ErrMessageNotFound{ID: 8}, repo.UpdateStatus(ctx, 8, shared.OutboxStatusProcessed))

	mock.ExpectExec(`SET attempts = attempts \+ 1`).
		WithArgs(pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.IncrementAttempts(ctx, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	rows := pgxmock.NewRows([]string{"status", "count"}).
		AddRow(shared.OutboxStatusPending, 3).
		AddRow(shared.OutboxStatusFailedToPublish, 1)
	mock.ExpectQuery("GROUP BY status").WillReturnRows(rows)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[shared.OutboxStatus]int{shared.OutboxStatusPending: 3, shared.OutboxStatusFailedToPublish: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
