package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/platform/persistence"
)

const activityColumns = `id, organisation_id, actor, type, entity_type, entity_id, payload, created_at`

// ActivityRepository implements the append-only activity.Repository for PostgreSQL
type ActivityRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(logger *slog.Logger, db *persistence.PostgresDB) activity.Repository {
	return &ActivityRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *ActivityRepository) WithTx(tx pgx.Tx) activity.Repository {
	return &ActivityRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanEvent(row pgx.Row) (*activity.Event, error) {
	var (
		e       activity.Event
		payload []byte
	)
	err := row.Scan(&e.ID, &e.OrganisationID, &e.Actor, &e.Type, &e.EntityType, &e.EntityID, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Payload = payload
	return &e, nil
}

// Create appends an activity event.
func (r *ActivityRepository) Create(ctx context.Context, e *activity.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	payload := []byte(e.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := `
		INSERT INTO activity_events (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query, e.ID, e.OrganisationID, e.Actor, e.Type, e.EntityType, e.EntityID, payload, e.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create activity event", "id", e.ID.String(), "type", e.Type, "error", err)
		return fmt.Errorf("failed to create activity event: %w", err)
	}
	return nil
}

// GetByID retrieves an event, returning nil when it does not exist.
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*activity.Event, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_events WHERE id = $1`

	e, err := scanEvent(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get activity event", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get activity event: %w", err)
	}
	return e, nil
}

// List returns the most recent events, up to limit.
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]*activity.Event, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_events ORDER BY created_at DESC LIMIT $1`

	rows, err := r.querier.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list activity events", "error", err)
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	events := []*activity.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			r.logger.Error("Failed to scan activity event", "error", err)
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over activity events", "error", err)
		return nil, fmt.Errorf("error iterating over activity events: %w", err)
	}
	return events, nil
}
