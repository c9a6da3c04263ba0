package buyinglist

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages buying list persistence
type Repository interface {
	List(ctx context.Context) ([]*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Item, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates a missing buying list item
type ErrItemNotFound struct {
	ID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "buying list item not found: " + e.ID.String()
}

// Is matches any ErrItemNotFound when the target carries no ID.
func (e ErrItemNotFound) Is(target error) bool {
	t, ok := target.(ErrItemNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrAlreadyReceived is returned when receiving an item a second time.
type ErrAlreadyReceived struct {
	ID uuid.UUID
}

func (e ErrAlreadyReceived) Error() string {
	return "buying list item " + e.ID.String() + " already received"
}

// ErrNotReceivable is returned when the item's status forbids receiving it.
type ErrNotReceivable struct {
	ID     uuid.UUID
	Status Status
}

func (e ErrNotReceivable) Error() string {
	return "buying list item " + e.ID.String() + " cannot be received from status " + string(e.Status)
}
