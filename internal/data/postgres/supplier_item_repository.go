package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/platform/persistence"
)

const supplierItemColumns = `id, organisation_id, supplier_id, import_job_id, brand, sku, title,
		condition_rank, ask_price_usd, ask_price_eur, availability, row_hash, raw, created_at`

// SupplierItemRepository implements the supplier.ItemRepository interface for PostgreSQL
type SupplierItemRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSupplierItemRepository creates a new PostgreSQL supplier item repository
func NewSupplierItemRepository(logger *slog.Logger, db *persistence.PostgresDB) supplier.ItemRepository {
	return &SupplierItemRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *SupplierItemRepository) WithTx(tx pgx.Tx) supplier.ItemRepository {
	return &SupplierItemRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateIfAbsent inserts the item unless the supplier already has a row with
// the same hash.
func (r *SupplierItemRepository) CreateIfAbsent(ctx context.Context, item *supplier.Item) (bool, error) {
	raw, err := json.Marshal(item.Raw)
	if err != nil {
		return false, fmt.Errorf("failed to encode raw row: %w", err)
	}

	query := `
		INSERT INTO supplier_items (` + supplierItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (supplier_id, row_hash) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		item.ID,
		item.OrganisationID,
		item.SupplierID,
		item.ImportJobID,
		item.Brand,
		item.SKU,
		item.Title,
		item.ConditionRank,
		item.AskPriceUSD,
		item.AskPriceEUR,
		item.Availability,
		item.RowHash,
		raw,
		item.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create supplier item", "supplier_id", item.SupplierID.String(), "error", err)
		return false, fmt.Errorf("failed to create supplier item: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListBySupplier returns the supplier's imported rows, newest first.
func (r *SupplierItemRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*supplier.Item, error) {
	query := `SELECT ` + supplierItemColumns + ` FROM supplier_items WHERE supplier_id = $1 ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query, supplierID)
	if err != nil {
		r.logger.Error("Failed to list supplier items", "supplier_id", supplierID.String(), "error", err)
		return nil, fmt.Errorf("failed to list supplier items: %w", err)
	}
	defer rows.Close()

	items := []*supplier.Item{}
	for rows.Next() {
		var (
			item supplier.Item
			raw  []byte
		)
		err := rows.Scan(&item.ID, &item.OrganisationID, &item.SupplierID, &item.ImportJobID, &item.Brand,
			&item.SKU, &item.Title, &item.ConditionRank, &item.AskPriceUSD, &item.AskPriceEUR,
			&item.Availability, &item.RowHash, &raw, &item.CreatedAt)
		if err != nil {
			r.logger.Error("Failed to scan supplier item", "error", err)
			return nil, fmt.Errorf("failed to scan supplier item: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &item.Raw); err != nil {
				return nil, fmt.Errorf("failed to decode raw row: %w", err)
			}
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over supplier items", "error", err)
		return nil, fmt.Errorf("error iterating over supplier items: %w", err)
	}
	return items, nil
}
