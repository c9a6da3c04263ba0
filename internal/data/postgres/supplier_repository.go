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
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/platform/persistence"
)

const supplierColumns = `id, organisation_id, name, contact_email, default_currency, import_template,
		active, created_at, updated_at`

// SupplierRepository implements the supplier.Repository interface for PostgreSQL
type SupplierRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSupplierRepository creates a new PostgreSQL supplier repository
func NewSupplierRepository(logger *slog.Logger, db *persistence.PostgresDB) supplier.Repository {
	return &SupplierRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *SupplierRepository) WithTx(tx pgx.Tx) supplier.Repository {
	return &SupplierRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanSupplier(row pgx.Row) (*supplier.Supplier, error) {
	var (
		s        supplier.Supplier
		template []byte
	)
	err := row.Scan(&s.ID, &s.OrganisationID, &s.Name, &s.ContactEmail, &s.DefaultCurrency, &template,
		&s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(template) > 0 {
		if err := json.Unmarshal(template, &s.ImportTemplate); err != nil {
			return nil, fmt.Errorf("failed to decode import template: %w", err)
		}
	}
	return &s, nil
}

// List returns every supplier ordered by name.
func (r *SupplierRepository) List(ctx context.Context) ([]*supplier.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY name ASC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list suppliers", "error", err)
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []*supplier.Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			r.logger.Error("Failed to scan supplier", "error", err)
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over suppliers", "error", err)
		return nil, fmt.Errorf("error iterating over suppliers: %w", err)
	}
	return suppliers, nil
}

// GetByID retrieves a supplier, returning nil when it does not exist.
func (r *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

	s, err := scanSupplier(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get supplier", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return s, nil
}

// Create validates and stores a new supplier.
func (r *SupplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	if err := s.Validate(); err != nil {
		return err
	}
	template, err := json.Marshal(s.ImportTemplate)
	if err != nil {
		return fmt.Errorf("failed to encode import template: %w", err)
	}

	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.querier.Exec(ctx, query, s.ID, s.OrganisationID, s.Name, s.ContactEmail, s.DefaultCurrency,
		template, s.Active, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create supplier", "id", s.ID.String(), "error", err)
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}

// Update applies the non-nil patch fields and returns the stored supplier.
func (r *SupplierRepository) Update(ctx context.Context, id uuid.UUID, patch supplier.Patch) (*supplier.Supplier, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		var b setBuilder
		addString(&b, "name", patch.Name)
		addString(&b, "contact_email", patch.ContactEmail)
		addString(&b, "default_currency", patch.DefaultCurrency)
		if patch.ImportTemplate != nil {
			template, err := json.Marshal(patch.ImportTemplate)
			if err != nil {
				return nil, fmt.Errorf("failed to encode import template: %w", err)
			}
			b.add("import_template", template)
		}
		if patch.Active != nil {
			b.add("active", *patch.Active)
		}

		query, args := b.build("suppliers", id, time.Now().UTC())
		result, err := r.querier.Exec(ctx, query, args...)
		if err != nil {
			r.logger.Error("Failed to update supplier", "id", id.String(), "error", err)
			return nil, fmt.Errorf("failed to update supplier: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil, supplier.ErrSupplierNotFound{ID: id}
		}
	}

	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, supplier.ErrSupplierNotFound{ID: id}
	}
	return s, nil
}

// Delete removes the supplier. Deleting a missing row is not an error.
func (r *SupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.querier.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id); err != nil {
		r.logger.Error("Failed to delete supplier", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	return nil
}
