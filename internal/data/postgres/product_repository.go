// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a transaction with WithTx so services can
// compose multi-table writes atomically.
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
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/platform/persistence"
)

const productColumns = `id, organisation_id, brand, model, category, condition, colour,
		cost_price_eur, sell_price_eur, currency, status, quantity, images, notes,
		buying_list_item_id, created_at, updated_at`

// ProductRepository implements the product.Repository interface for PostgreSQL
type ProductRepository struct {
	querier persistence.Querier // Can be the pool or a pgx.Tx
	logger  *slog.Logger
}

// NewProductRepository creates a new PostgreSQL product repository.
func NewProductRepository(logger *slog.Logger, db *persistence.PostgresDB) product.Repository {
	return &ProductRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx pgx.Tx) product.Repository {
	return &ProductRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var (
		p      product.Product
		images []byte
	)
	err := row.Scan(
		&p.ID,
		&p.OrganisationID,
		&p.Brand,
		&p.Model,
		&p.Category,
		&p.Condition,
		&p.Colour,
		&p.CostPriceEUR,
		&p.SellPriceEUR,
		&p.Currency,
		&p.Status,
		&p.Quantity,
		&images,
		&p.Notes,
		&p.BuyingListItemID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Images = []product.Image{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}
	return &p, nil
}

// List returns every product, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", "error", err)
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over products", "error", err)
		return nil, fmt.Errorf("error iterating over products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a product, returning nil when it does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get product", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// LockForUpdate reads the product holding a row lock until the transaction ends.
func (r *ProductRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ID: id}
		}
		r.logger.Error("Failed to lock product for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock product for update: %w", err)
	}
	return p, nil
}

// Create validates and stores a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Images == nil {
		p.Images = []product.Image{}
	}
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.querier.Exec(ctx, query,
		p.ID,
		p.OrganisationID,
		p.Brand,
		p.Model,
		p.Category,
		p.Condition,
		p.Colour,
		p.CostPriceEUR,
		p.SellPriceEUR,
		p.Currency,
		p.Status,
		p.Quantity,
		images,
		p.Notes,
		p.BuyingListItemID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create product", "id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update applies the non-nil patch fields and returns the stored product.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, patch product.Patch) (*product.Product, error) {
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
		if patch.CostPriceEUR != nil {
			b.add("cost_price_eur", patch.CostPriceEUR.Round(2))
		}
		if patch.SellPriceEUR != nil {
			b.add("sell_price_eur", patch.SellPriceEUR.Round(2))
		}
		if patch.Status != nil {
			b.add("status", *patch.Status)
		}
		if patch.Quantity != nil {
			b.add("quantity", *patch.Quantity)
		}
		if patch.Images != nil {
			images, err := json.Marshal(*patch.Images)
			if err != nil {
				return nil, fmt.Errorf("failed to encode product images: %w", err)
			}
			b.add("images", images)
		}
		addString(&b, "notes", patch.Notes)

		query, args := b.build("products", id, time.Now().UTC())
		result, err := r.querier.Exec(ctx, query, args...)
		if err != nil {
			r.logger.Error("Failed to update product", "id", id.String(), "error", err)
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil, product.ErrProductNotFound{ID: id}
		}
	}

	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound{ID: id}
	}
	return p, nil
}

// Delete removes the product. Deleting a missing row is not an error.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.querier.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		r.logger.Error("Failed to delete product", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
