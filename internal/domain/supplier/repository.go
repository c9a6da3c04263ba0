package supplier

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages supplier persistence
type Repository interface {
	List(ctx context.Context) ([]*Supplier, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// ItemRepository manages imported supplier rows
type ItemRepository interface {
	// CreateIfAbsent inserts the item unless a row with the same hash exists
	// for the supplier. It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, item *Item) (bool, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*Item, error)
	WithTx(tx pgx.Tx) ItemRepository
}

// ErrSupplierNotFound indicates a missing supplier
type ErrSupplierNotFound struct {
	ID uuid.UUID
}

func (e ErrSupplierNotFound) Error() string {
	return "supplier not found: " + e.ID.String()
}

// Is matches any ErrSupplierNotFound when the target carries no ID.
func (e ErrSupplierNotFound) Is(target error) bool {
	t, ok := target.(ErrSupplierNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
