package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Type classifies a money movement.
type Type string

const (
	TypePurchase   Type = "purchase"
	TypeSale       Type = "sale"
	TypeAdjustment Type = "adjustment"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	switch t {
	case TypePurchase, TypeSale, TypeAdjustment:
		return true
	}
	return false
}

// Transaction is an immutable money movement in the books.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	OrganisationID   string          `json:"organisationId"`
	Type             Type            `json:"type"`
	AmountEUR        decimal.Decimal `json:"amountEur"`
	ProductID        *uuid.UUID      `json:"productId,omitempty"`
	BuyingListItemID *uuid.UUID      `json:"buyingListItemId,omitempty"`
	Notes            string          `json:"notes"`
	OccurredAt       time.Time       `json:"occurredAt"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// NewTransaction creates a transaction occurring now.
func NewTransaction(organisationID string, typ Type, amount decimal.Decimal) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:             uuid.New(),
		OrganisationID: organisationID,
		Type:           typ,
		AmountEUR:      shared.RoundMoney(amount),
		OccurredAt:     now,
		CreatedAt:      now,
	}
}

// Validate checks the transaction's invariants.
func (t *Transaction) Validate() error {
	var errs shared.ValidationErrors
	if !t.Type.Valid() {
		errs.Add("type", fmt.Sprintf("unknown transaction type %q", t.Type))
	}
	if t.Type != TypeAdjustment && t.AmountEUR.IsNegative() {
		errs.Add("amountEur", "must not be negative")
	}
	if t.OccurredAt.IsZero() {
		errs.Add("occurredAt", "is required")
	}
	return errs.Err()
}
