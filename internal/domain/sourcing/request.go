package sourcing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Request is a client's ask to find a specific item.
type Request struct {
	ID             uuid.UUID        `json:"id"`
	OrganisationID string           `json:"organisationId"`
	ClientName     string           `json:"clientName"`
	Brand          string           `json:"brand"`
	Model          string           `json:"model"`
	Description    string           `json:"description"`
	BudgetEUR      *decimal.Decimal `json:"budgetEur,omitempty"`
	Status         Status           `json:"status"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// NewRequest creates an open sourcing request.
func NewRequest(organisationID, clientName, brand string) *Request {
	now := time.Now().UTC()
	return &Request{
		ID:             uuid.New(),
		OrganisationID: organisationID,
		ClientName:     clientName,
		Brand:          brand,
		Status:         StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks the request's invariants. Any known status is accepted on create.
func (r *Request) Validate() error {
	var errs shared.ValidationErrors
	errs.Required("clientName", r.ClientName)
	errs.Required("brand", r.Brand)
	if r.BudgetEUR != nil && r.BudgetEUR.IsNegative() {
		errs.Add("budgetEur", "must not be negative")
	}
	if !r.Status.Valid() {
		errs.Add("status", fmt.Sprintf("unknown status %q", r.Status))
	}
	return errs.Err()
}

// Patch carries the fields of a partial sourcing request update.
type Patch struct {
	ClientName  *string          `json:"clientName"`
	Brand       *string          `json:"brand"`
	Model       *string          `json:"model"`
	Description *string          `json:"description"`
	BudgetEUR   *decimal.Decimal `json:"budgetEur"`
	Status      *Status          `json:"status"`
	Notes       *string          `json:"notes"`
}

// Validate checks the fields present on the patch.
func (p Patch) Validate() error {
	var errs shared.ValidationErrors
	if p.ClientName != nil {
		errs.Required("clientName", *p.ClientName)
	}
	if p.Brand != nil {
		errs.Required("brand", *p.Brand)
	}
	if p.BudgetEUR != nil && p.BudgetEUR.IsNegative() {
		errs.Add("budgetEur", "must not be negative")
	}
	if p.Status != nil && !p.Status.Valid() {
		errs.Add("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	return errs.Err()
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}
