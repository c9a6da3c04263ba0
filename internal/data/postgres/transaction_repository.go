package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, organisation_id, type, amount_eur, product_id, buying_list_item_id,
		notes, occurred_at, created_at`

// TransactionRepository implements the append-only ledger.Repository for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *TransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanTransaction(row pgx.Row) (*ledger.Transaction, error) {
	var t ledger.Transaction
	err := row.Scan(
		&t.ID,
		&t.OrganisationID,
		&t.Type,
		&t.AmountEUR,
		&t.ProductID,
		&t.BuyingListItemID,
		&t.Notes,
		&t.OccurredAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create validates and appends a transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.OrganisationID,
		t.Type,
		t.AmountEUR,
		t.ProductID,
		t.BuyingListItemID,
		t.Notes,
		t.OccurredAt,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "id", t.ID.String(), "type", string(t.Type), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction, returning nil when it does not exist.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// List returns every transaction, most recent first.
func (r *TransactionRepository) List(ctx context.Context) ([]*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY occurred_at DESC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*ledger.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}
	return transactions, nil
}

// SumByType totals the amounts of every transaction type.
func (r *TransactionRepository) SumByType(ctx context.Context) (map[ledger.Type]decimal.Decimal, error) {
	query := `SELECT type, COALESCE(SUM(amount_eur), 0) FROM transactions GROUP BY type`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to sum transactions", "error", err)
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}
	defer rows.Close()

	totals := map[ledger.Type]decimal.Decimal{}
	for rows.Next() {
		var (
			typ   ledger.Type
			total decimal.Decimal
		)
		if err := rows.Scan(&typ, &total); err != nil {
			return nil, fmt.Errorf("failed to scan transaction total: %w", err)
		}
		totals[typ] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction totals: %w", err)
	}
	return totals, nil
}

// MonthlyTotals returns sale revenue and purchase spend per month since the given time.
func (r *TransactionRepository) MonthlyTotals(ctx context.Context, since time.Time) ([]ledger.MonthlyTotals, error) {
	query := `
		SELECT date_trunc('month', occurred_at) AS month,
			COALESCE(SUM(amount_eur) FILTER (WHERE type = 'sale'), 0),
			COALESCE(SUM(amount_eur) FILTER (WHERE type = 'purchase'), 0)
		FROM transactions
		WHERE occurred_at >= $1
		GROUP BY month
		ORDER BY month ASC
	`

	rows, err := r.querier.Query(ctx, query, since)
	if err != nil {
		r.logger.Error("Failed to aggregate monthly totals", "error", err)
		return nil, fmt.Errorf("failed to aggregate monthly totals: %w", err)
	}
	defer rows.Close()

	months := []ledger.MonthlyTotals{}
	for rows.Next() {
		var m ledger.MonthlyTotals
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Spend); err != nil {
			return nil, fmt.Errorf("failed to scan monthly totals: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over monthly totals: %w", err)
	}
	return months, nil
}
