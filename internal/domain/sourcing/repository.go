package sourcing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages sourcing request persistence
type Repository interface {
	List(ctx context.Context) ([]*Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	Create(ctx context.Context, r *Request) error
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Request, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountOpen(ctx context.Context) (int, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRequestNotFound indicates a missing sourcing request
type ErrRequestNotFound struct {
	ID uuid.UUID
}

func (e ErrRequestNotFound) Error() string {
	return "sourcing request not found: " + e.ID.String()
}

// Is matches any ErrRequestNotFound when the target carries no ID.
func (e ErrRequestNotFound) Is(target error) bool {
	t, ok := target.(ErrRequestNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
