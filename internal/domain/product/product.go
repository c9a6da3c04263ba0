package product

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the stock state of a product.
type Status string

const (
	StatusInStock  Status = "in_stock"
	StatusSold     Status = "sold"
	StatusReserved Status = "reserved"
)

// Valid reports whether s is a known product status.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusSold, StatusReserved:
		return true
	}
	return false
}

// Image is the metadata of a product photo.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Product is an item held in inventory.
type Product struct {
	ID             uuid.UUID `json:"id"`
	OrganisationID string    `json:"organisationId"`
	shared.ItemDetails
	CostPriceEUR     decimal.Decimal `json:"costPriceEur"`
	SellPriceEUR     decimal.Decimal `json:"sellPriceEur"`
	Currency         string          `json:"currency"`
	Status           Status          `json:"status"`
	Quantity         int             `json:"quantity"`
	Images           []Image         `json:"images"`
	Notes            string          `json:"notes"`
	BuyingListItemID *uuid.UUID      `json:"buyingListItemId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewProduct creates an in-stock product with a single unit.
func NewProduct(organisationID string, details shared.ItemDetails, cost, sell decimal.Decimal) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:             uuid.New(),
		OrganisationID: organisationID,
		ItemDetails:    details,
		CostPriceEUR:   shared.RoundMoney(cost),
		SellPriceEUR:   shared.RoundMoney(sell),
		Currency:       shared.CurrencyEUR,
		Status:         StatusInStock,
		Quantity:       1,
		Images:         []Image{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks the product's invariants.
func (p *Product) Validate() error {
	var errs shared.ValidationErrors
	p.ItemDetails.Validate(&errs)
	if p.CostPriceEUR.IsNegative() {
		errs.Add("costPriceEur", "must not be negative")
	}
	if p.SellPriceEUR.IsNegative() {
		errs.Add("sellPriceEur", "must not be negative")
	}
	if p.Currency != shared.CurrencyEUR {
		errs.Add("currency", fmt.Sprintf("must be %s", shared.CurrencyEUR))
	}
	if !p.Status.Valid() {
		errs.Add("status", fmt.Sprintf("unknown status %q", p.Status))
	}
	if p.Quantity < 0 {
		errs.Add("quantity", "must not be negative")
	}
	for i, img := range p.Images {
		if img.URL == "" {
			errs.Add(fmt.Sprintf("images[%d].url", i), "is required")
		}
	}
	return errs.Err()
}

// Margin is the difference between the sell and cost price.
func (p *Product) Margin() decimal.Decimal {
	return p.SellPriceEUR.Sub(p.CostPriceEUR)
}

// MarkSold moves the product to sold, failing when it already is.
func (p *Product) MarkSold() error {
	if p.Status == StatusSold {
		return ErrAlreadySold{ID: p.ID}
	}
	p.Status = StatusSold
	p.Quantity = 0
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Patch carries the fields of a partial product update. Nil fields are left untouched.
type Patch struct {
	Brand        *string          `json:"brand"`
	Model        *string          `json:"model"`
	Category     *string          `json:"category"`
	Condition    *string          `json:"condition"`
	Colour       *string          `json:"colour"`
	CostPriceEUR *decimal.Decimal `json:"costPriceEur"`
	SellPriceEUR *decimal.Decimal `json:"sellPriceEur"`
	Status       *Status          `json:"status"`
	Quantity     *int             `json:"quantity"`
	Images       *[]Image         `json:"images"`
	Notes        *string          `json:"notes"`
}

// Validate checks the fields present on the patch.
func (p Patch) Validate() error {
	var errs shared.ValidationErrors
	if p.Brand != nil {
		errs.Required("brand", *p.Brand)
	}
	if p.Model != nil {
		errs.Required("model", *p.Model)
	}
	if p.CostPriceEUR != nil && p.CostPriceEUR.IsNegative() {
		errs.Add("costPriceEur", "must not be negative")
	}
	if p.SellPriceEUR != nil && p.SellPriceEUR.IsNegative() {
		errs.Add("sellPriceEur", "must not be negative")
	}
	if p.Status != nil && !p.Status.Valid() {
		errs.Add("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		errs.Add("quantity", "must not be negative")
	}
	return errs.Err()
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}
