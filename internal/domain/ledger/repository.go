package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MonthlyTotals aggregates revenue and spend for one calendar month.
type MonthlyTotals struct {
	Month   time.Time       `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Spend   decimal.Decimal `json:"spend"`
}

// Repository manages transaction persistence. Transactions are append-only.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context) ([]*Transaction, error)
	SumByType(ctx context.Context) (map[Type]decimal.Decimal, error)
	MonthlyTotals(ctx context.Context, since time.Time) ([]MonthlyTotals, error)
	WithTx(tx pgx.Tx) Repository
}
