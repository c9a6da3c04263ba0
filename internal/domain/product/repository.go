package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages product persistence
type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// ErrProductNotFound indicates a missing product
type ErrProductNotFound struct {
	ID uuid.UUID
}

func (e ErrProductNotFound) Error() string {
	return "product not found: " + e.ID.String()
}

// Is matches any ErrProductNotFound when the target carries no ID.
func (e ErrProductNotFound) Is(target error) bool {
	t, ok := target.(ErrProductNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrAlreadySold is returned when selling a product twice.
type ErrAlreadySold struct {
	ID uuid.UUID
}

func (e ErrAlreadySold) Error() string {
	return "product " + e.ID.String() + " already sold"
}
