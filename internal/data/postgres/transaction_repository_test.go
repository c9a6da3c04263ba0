package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}

	productID := uuid.New()
	tx := ledger.NewTransaction("org-1", ledger.TypeSale, decimal.NewFromInt(7500))
	tx.ProductID = &productID

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.OrganisationID, tx.Type, tx.AmountEUR, tx.ProductID, tx.BuyingListItemID,
			tx.Notes, tx.OccurredAt, tx.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(ctx, tx))

	mock.ExpectExec("INSERT INTO transactions").WithArgs(anyArgs(9)...).WillReturnError(errors.New("disk full"))
	assert.ErrorContains(t, repo.Create(ctx, tx), "failed to create transaction")

	invalid := ledger.NewTransaction("org-1", "refund", decimal.NewFromInt(1))
	assert.Error(t, repo.Create(ctx, invalid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_List(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	now := time.Now().UTC()
	id := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "organisation_id", "type", "amount_eur", "product_id", "buying_list_item_id", "notes", "occurred_at", "created_at"}).
		AddRow(id, "org-1", ledger.TypePurchase, decimal.NewFromInt(5000), nil, nil, "", now, now)
	mock.ExpectQuery("FROM transactions ORDER BY occurred_at DESC").WillReturnRows(rows)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Nil(t, got[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_SumByType(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}

	rows := pgxmock.NewRows([]string{"type", "sum"}).
		AddRow(ledger.TypeSale, decimal.NewFromInt(12000)).
		AddRow(ledger.TypePurchase, decimal.NewFromInt(8000))
	mock.ExpectQuery("GROUP BY type").WillReturnRows(rows)

	totals, err := repo.SumByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12000", totals[ledger.TypeSale].String())
	assert.Equal(t, "8000", totals[ledger.TypePurchase].String())
	assert.True(t, totals[ledger.TypeAdjustment].IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_MonthlyTotals(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"month", "revenue", "spend"}).
		AddRow(feb, decimal.NewFromInt(7500), decimal.NewFromInt(5000))
	mock.ExpectQuery("date_trunc").WithArgs(since).WillReturnRows(rows)

	months, err := repo.MonthlyTotals(ctx, since)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, feb, months[0].Month)
	assert.Equal(t, "2500", months[0].Revenue.Sub(months[0].Spend).String())

	mock.ExpectQuery("date_trunc").WithArgs(since).WillReturnError(errors.New("timeout"))
	_, err = repo.MonthlyTotals(ctx, since)
	assert.ErrorContains(t, err, "failed to aggregate monthly totals")
	assert.NoError(t, mock.ExpectationsWereMet())
}
