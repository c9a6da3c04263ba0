package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/platform/persistence"
)

const buyingListColumns = `id, organisation_id, source_type, brand, model, category, condition, colour,
		target_buy_price_eur, status, notes, supplier_id, evaluation_id, landed_cost,
		created_at, updated_at`

// BuyingListRepository implements the buyinglist.Repository interface for PostgreSQL
type BuyingListRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBuyingListRepository creates a new PostgreSQL buying list repository
func NewBuyingListRepository(logger *slog.Logger, db *persistence.PostgresDB) buyinglist.Repository {
	return &BuyingListRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *BuyingListRepository) WithTx(tx pgx.Tx) buyinglist.Repository {
	return &BuyingListRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanBuyingListItem(row pgx.Row) (*buyinglist.Item, error) {
	var (
		item       buyinglist.Item
		landedCost []byte
	)
	err := row.Scan(
		&item.ID,
		&item.OrganisationID,
		&item.SourceType,
		&item.Brand,
		&item.Model,
		&item.Category,
		&item.Condition,
		&item.Colour,
		&item.TargetBuyPriceEUR,
		&item.Status,
		&item.Notes,
		&item.SupplierID,
		&item.EvaluationID,
		&landedCost,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(landedCost) > 0 {
		var lc buyinglist.LandedCost
		if err := json.Unmarshal(landedCost, &lc); err != nil {
			return nil, fmt.Errorf("failed to decode landed cost: %w", err)
		}
		item.LandedCost = &lc
	}
	return &item, nil
}

func encodeLandedCost(lc *buyinglist.LandedCost) ([]byte, error) {
	if lc == nil {
		return nil, nil
	}
	return json.Marshal(lc)
}

// List returns every buying list item, newest first.
func (r *BuyingListRepository) List(ctx context.Context) ([]*buyinglist.Item, error) {
	query := `SELECT ` + buyingListColumns + ` FROM buying_list_items ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list buying list items", "error", err)
		return nil, fmt.Errorf("failed to list buying list items: %w", err)
	}
	defer rows.Close()

	items := []*buyinglist.Item{}
	for rows.Next() {
		item, err := scanBuyingListItem(rows)
		if err != nil {
			r.logger.Error("Failed to scan buying list item", "error", err)
			return nil, fmt.Errorf("failed to scan buying list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over buying list items", "error", err)
		return nil, fmt.Errorf("error iterating over buying list items: %w", err)
	}

	return items, nil
}

// GetByID retrieves an item, returning nil when it does not exist.
func (r *BuyingListRepository) GetByID(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error) {
	query := `SELECT ` + buyingListColumns + ` FROM buying_list_items WHERE id = $1`

	item, err := scanBuyingListItem(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get buying list item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get buying list item: %w", err)
	}
	return item, nil
}

// LockForUpdate reads the item holding a row lock until the transaction ends.
func (r *BuyingListRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error) {
	query := `SELECT ` + buyingListColumns + ` FROM buying_list_items WHERE id = $1 FOR UPDATE`

	item, err := scanBuyingListItem(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, buyinglist.ErrItemNotFound{ID: id}
		}
		r.logger.Error("Failed to lock buying list item for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock buying list item for update: %w", err)
	}
	return item, nil
}

// Create validates and stores a new buying list item.
func (r *BuyingListRepository) Create(ctx context.Context, item *buyinglist.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	landedCost, err := encodeLandedCost(item.LandedCost)
	if err != nil {
		return fmt.Errorf("failed to encode landed cost: %w", err)
	}

	query := `
		INSERT INTO buying_list_items (` + buyingListColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.querier.Exec(ctx, query,
		item.ID,
		item.OrganisationID,
		item.SourceType,
		item.Brand,
		item.Model,
		item.Category,
		item.Condition,
		item.Colour,
		item.TargetBuyPriceEUR,
		item.Status,
		item.Notes,
		item.SupplierID,
		item.EvaluationID,
		landedCost,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create buying list item", "id", item.ID.String(), "error", err)
		return fmt.Errorf("failed to create buying list item: %w", err)
	}

	return nil
}

// Update applies the non-nil patch fields and returns the stored item.
func (r *BuyingListRepository) Update(ctx context.Context, id uuid.UUID, patch buyinglist.Patch) (*buyinglist.Item, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		var b setBuilder
		addString(&b, "brand", patch.Brand)
		addString(&b, "model", patch.Model)
		addString(&b, "category", patch.Category)
		addString(&b, "condition", patch.Condition)
		addString(&b, "colour", patch.Colour)
		if patch.TargetBuyPriceEUR != nil {
			b.add("target_buy_price_eur", patch.TargetBuyPriceEUR.Round(2))
		}
		if patch.Status != nil {
			b.add("status", *patch.Status)
		}
		addString(&b, "notes", patch.Notes)
		if patch.SupplierID != nil {
			b.add("supplier_id", *patch.SupplierID)
		}
		if patch.LandedCost != nil {
			landedCost, err := encodeLandedCost(patch.LandedCost)
			if err != nil {
				return nil, fmt.Errorf("failed to encode landed cost: %w", err)
			}
			b.add("landed_cost", landedCost)
		}

		query, args := b.build("buying_list_items", id, time.Now().UTC())
		result, err := r.querier.Exec(ctx, query, args...)
		if err != nil {
			r.logger.Error("Failed to update buying list item", "id", id.String(), "error", err)
			return nil, fmt.Errorf("failed to update buying list item: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil, buyinglist.ErrItemNotFound{ID: id}
		}
	}

	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, buyinglist.ErrItemNotFound{ID: id}
	}
	return item, nil
}

// UpdateStatus sets the status directly, bypassing patch validation. The
// receive operation uses it to mark items received.
func (r *BuyingListRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status buyinglist.Status) error {
	query := `
		UPDATE buying_list_items
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update buying list item status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update buying list item status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return buyinglist.ErrItemNotFound{ID: id}
	}
	return nil
}

// Delete removes the item. Deleting a missing row is not an error.
func (r *BuyingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.querier.Exec(ctx, `DELETE FROM buying_list_items WHERE id = $1`, id); err != nil {
		r.logger.Error("Failed to delete buying list item", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete buying list item: %w", err)
	}
	return nil
}
