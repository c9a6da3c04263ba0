package buyinglist

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the purchasing state of a buying list item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOrdered   Status = "ordered"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOrdered, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// SourceType tells where a buying list item originated.
type SourceType string

const (
	SourceManual    SourceType = "manual"
	SourceEvaluator SourceType = "evaluator"
	SourceSupplier  SourceType = "supplier"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceManual, SourceEvaluator, SourceSupplier:
		return true
	}
	return false
}

// LandedCost is the cost breakdown snapshot taken when the item was evaluated.
type LandedCost struct {
	HammerPrice  decimal.Decimal `json:"hammerPrice"`
	BuyerPremium decimal.Decimal `json:"buyerPremium"`
	Shipping     decimal.Decimal `json:"shipping"`
	Customs      decimal.Decimal `json:"customs"`
	ImportVAT    decimal.Decimal `json:"importVat"`
	Total        decimal.Decimal `json:"total"`
}

// Item is an entry on the buying list.
type Item struct {
	ID             uuid.UUID  `json:"id"`
	OrganisationID string     `json:"organisationId"`
	SourceType     SourceType `json:"sourceType"`
	shared.ItemDetails
	TargetBuyPriceEUR decimal.Decimal `json:"targetBuyPriceEur"`
	Status            Status          `json:"status"`
	Notes             string          `json:"notes"`
	SupplierID        *uuid.UUID      `json:"supplierId,omitempty"`
	EvaluationID      *string         `json:"evaluationId,omitempty"`
	LandedCost        *LandedCost     `json:"landedCost,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NewItem creates a pending buying list item.
func NewItem(organisationID string, source SourceType, details shared.ItemDetails, target decimal.Decimal) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:                uuid.New(),
		OrganisationID:    organisationID,
		SourceType:        source,
		ItemDetails:       details,
		TargetBuyPriceEUR: shared.RoundMoney(target),
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate checks the item's invariants.
func (i *Item) Validate() error {
	var errs shared.ValidationErrors
	i.ItemDetails.Validate(&errs)
	if !i.SourceType.Valid() {
		errs.Add("sourceType", fmt.Sprintf("unknown source type %q", i.SourceType))
	}
	if i.TargetBuyPriceEUR.IsNegative() {
		errs.Add("targetBuyPriceEur", "must not be negative")
	}
	if !i.Status.Valid() {
		errs.Add("status", fmt.Sprintf("unknown status %q", i.Status))
	}
	return errs.Err()
}

// CheckReceivable reports why the item cannot be received, if it cannot.
func (i *Item) CheckReceivable() error {
	switch i.Status {
	case StatusReceived:
		return ErrAlreadyReceived{ID: i.ID}
	case StatusCancelled:
		return ErrNotReceivable{ID: i.ID, Status: i.Status}
	}
	return nil
}

// CheckStatusChange reports whether the item may move to status to through
// an update. A received item keeps its status.
func (i *Item) CheckStatusChange(to Status) error {
	if i.Status == StatusReceived && to != StatusReceived {
		return ErrAlreadyReceived{ID: i.ID}
	}
	return nil
}

// Patch carries the fields of a partial buying list update.
type Patch struct {
	Brand             *string          `json:"brand"`
	Model             *string          `json:"model"`
	Category          *string          `json:"category"`
	Condition         *string          `json:"condition"`
	Colour            *string          `json:"colour"`
	TargetBuyPriceEUR *decimal.Decimal `json:"targetBuyPriceEur"`
	Status            *Status          `json:"status"`
	Notes             *string          `json:"notes"`
	SupplierID        *uuid.UUID       `json:"supplierId"`
	LandedCost        *LandedCost      `json:"landedCost"`
}

// Validate checks the fields present on the patch. Received can only be set
// by the receive operation.
func (p Patch) Validate() error {
	var errs shared.ValidationErrors
	if p.Brand != nil {
		errs.Required("brand", *p.Brand)
	}
	if p.Model != nil {
		errs.Required("model", *p.Model)
	}
	if p.TargetBuyPriceEUR != nil && p.TargetBuyPriceEUR.IsNegative() {
		errs.Add("targetBuyPriceEur", "must not be negative")
	}
	if p.Status != nil {
		switch {
		case !p.Status.Valid():
			errs.Add("status", fmt.Sprintf("unknown status %q", *p.Status))
		case *p.Status == StatusReceived:
			errs.Add("status", "use the receive operation to mark an item received")
		}
	}
	return errs.Err()
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}
