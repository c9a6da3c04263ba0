package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/platform/persistence"
)

const sourcingColumns = `id, organisation_id, client_name, brand, model, description, budget_eur,
		status, notes, created_at, updated_at`

// SourcingRepository implements the sourcing.Repository interface for PostgreSQL
type SourcingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSourcingRepository creates a new PostgreSQL sourcing repository
func NewSourcingRepository(logger *slog.Logger, db *persistence.PostgresDB) sourcing.Repository {
	return &SourcingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *SourcingRepository) WithTx(tx pgx.Tx) sourcing.Repository {
	return &SourcingRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanSourcingRequest(row pgx.Row) (*sourcing.Request, error) {
	var req sourcing.Request
	err := row.Scan(&req.ID, &req.OrganisationID, &req.ClientName, &req.Brand, &req.Model, &req.Description,
		&req.BudgetEUR, &req.Status, &req.Notes, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns every sourcing request, newest first.
func (r *SourcingRepository) List(ctx context.Context) ([]*sourcing.Request, error) {
	query := `SELECT ` + sourcingColumns + ` FROM sourcing_requests ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list sourcing requests", "error", err)
		return nil, fmt.Errorf("failed to list sourcing requests: %w", err)
	}
	defer rows.Close()

	requests := []*sourcing.Request{}
	for rows.Next() {
		req, err := scanSourcingRequest(rows)
		if err != nil {
			r.logger.Error("Failed to scan sourcing request", "error", err)
			return nil, fmt.Errorf("failed to scan sourcing request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over sourcing requests", "error", err)
		return nil, fmt.Errorf("error iterating over sourcing requests: %w", err)
	}
	return requests, nil
}

// GetByID retrieves a request, returning nil when it does not exist.
func (r *SourcingRepository) GetByID(ctx context.Context, id uuid.UUID) (*sourcing.Request, error) {
	query := `SELECT ` + sourcingColumns + ` FROM sourcing_requests WHERE id = $1`

	req, err := scanSourcingRequest(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get sourcing request", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get sourcing request: %w", err)
	}
	return req, nil
}

// LockForUpdate reads the request holding a row lock until the transaction ends.
func (r *SourcingRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*sourcing.Request, error) {
	query := `SELECT ` + sourcingColumns + ` FROM sourcing_requests WHERE id = $1 FOR UPDATE`

	req, err := scanSourcingRequest(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sourcing.ErrRequestNotFound{ID: id}
		}
		r.logger.Error("Failed to lock sourcing request for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock sourcing request for update: %w", err)
	}
	return req, nil
}

// Create validates and stores a new request.
func (r *SourcingRepository) Create(ctx context.Context, req *sourcing.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO sourcing_requests (` + sourcingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query, req.ID, req.OrganisationID, req.ClientName, req.Brand, req.Model,
		req.Description, req.BudgetEUR, req.Status, req.Notes, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create sourcing request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to create sourcing request: %w", err)
	}
	return nil
}

// Update applies the non-nil patch fields and returns the stored request. The
// status guard is enforced by the service, which holds the row lock.
func (r *SourcingRepository) Update(ctx context.Context, id uuid.UUID, patch sourcing.Patch) (*sourcing.Request, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		var b setBuilder
		addString(&b, "client_name", patch.ClientName)
		addString(&b, "brand", patch.Brand)
		addString(&b, "model", patch.Model)
		addString(&b, "description", patch.Description)
		if patch.BudgetEUR != nil {
			b.add("budget_eur", patch.BudgetEUR.Round(2))
		}
		if patch.Status != nil {
			b.add("status", *patch.Status)
		}
		addString(&b, "notes", patch.Notes)

		query, args := b.build("sourcing_requests", id, time.Now().UTC())
		result, err := r.querier.Exec(ctx, query, args...)
		if err != nil {
			r.logger.Error("Failed to update sourcing request", "id", id.String(), "error", err)
			return nil, fmt.Errorf("failed to update sourcing request: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil, sourcing.ErrRequestNotFound{ID: id}
		}
	}

	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, sourcing.ErrRequestNotFound{ID: id}
	}
	return req, nil
}

// Delete removes the request. Deleting a missing row is not an error.
func (r *SourcingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.querier.Exec(ctx, `DELETE FROM sourcing_requests WHERE id = $1`, id); err != nil {
		r.logger.Error("Failed to delete sourcing request", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete sourcing request: %w", err)
	}
	return nil
}

// CountOpen counts requests that have not reached a terminal status.
func (r *SourcingRepository) CountOpen(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM sourcing_requests WHERE status NOT IN ($1, $2)`

	var count int
	if err := r.querier.QueryRow(ctx, query, sourcing.StatusFulfilled, sourcing.StatusLost).Scan(&count); err != nil {
		r.logger.Error("Failed to count open sourcing requests", "error", err)
		return 0, fmt.Errorf("failed to count open sourcing requests: %w", err)
	}
	return count, nil
}
