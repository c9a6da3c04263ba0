package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists activity events. Events are append-only.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, limit int) ([]*Event, error)
	WithTx(tx pgx.Tx) Repository
}

// FeedRepository stores the activity feed read model
type FeedRepository interface {
	Upsert(ctx context.Context, entry *FeedEntry) error
	GetByEventID(ctx context.Context, eventID string) (*FeedEntry, error)
	Recent(ctx context.Context, organisationID string, limit int) ([]*FeedEntry, error)
}
