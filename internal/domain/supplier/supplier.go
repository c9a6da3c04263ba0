package supplier

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Target fields a supplier column can be mapped to.
const (
	FieldBrand         = "brand"
	FieldSKU           = "sku"
	FieldTitle         = "title"
	FieldConditionRank = "condition_rank"
	FieldAskPriceUSD   = "ask_price_usd"
	FieldAvailability  = "availability"
)

// TargetFields lists every mappable field.
var TargetFields = []string{FieldBrand, FieldSKU, FieldTitle, FieldConditionRank, FieldAskPriceUSD, FieldAvailability}

func isTargetField(f string) bool {
	for _, t := range TargetFields {
		if t == f {
			return true
		}
	}
	return false
}

// ImportTemplate describes how a supplier's spreadsheet columns map onto item fields.
type ImportTemplate struct {
	ColumnMap           map[string]string `json:"columnMap" yaml:"column_map"`
	AvailabilityMap     map[string]string `json:"availabilityMap" yaml:"availability_map"`
	DefaultAvailability string            `json:"defaultAvailability" yaml:"default_availability"`
}

// Validate checks that every mapped column targets a known field.
func (t ImportTemplate) Validate(errs *shared.ValidationErrors) {
	for source, target := range t.ColumnMap {
		if !isTargetField(target) {
			errs.Add("importTemplate.columnMap", fmt.Sprintf("column %q maps to unknown field %q", source, target))
		}
	}
}

// Supplier is a vendor whose price lists get imported.
type Supplier struct {
	ID              uuid.UUID      `json:"id"`
	OrganisationID  string         `json:"organisationId"`
	Name            string         `json:"name"`
	ContactEmail    string         `json:"contactEmail"`
	DefaultCurrency string         `json:"defaultCurrency"`
	ImportTemplate  ImportTemplate `json:"importTemplate"`
	Active          bool           `json:"active"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// NewSupplier creates an active supplier quoting in USD unless told otherwise.
func NewSupplier(organisationID, name string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		ID:              uuid.New(),
		OrganisationID:  organisationID,
		Name:            name,
		DefaultCurrency: shared.CurrencyUSD,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate checks the supplier's invariants.
func (s *Supplier) Validate() error {
	var errs shared.ValidationErrors
	errs.Required("name", s.Name)
	if s.ContactEmail != "" && !strings.Contains(s.ContactEmail, "@") {
		errs.Add("contactEmail", "must be an email address")
	}
	if len(s.DefaultCurrency) != 3 {
		errs.Add("defaultCurrency", "must be a 3 letter currency code")
	}
	s.ImportTemplate.Validate(&errs)
	return errs.Err()
}

// Patch carries the fields of a partial supplier update.
type Patch struct {
	Name            *string         `json:"name"`
	ContactEmail    *string         `json:"contactEmail"`
	DefaultCurrency *string         `json:"defaultCurrency"`
	ImportTemplate  *ImportTemplate `json:"importTemplate"`
	Active          *bool           `json:"active"`
}

// Validate checks the fields present on the patch.
func (p Patch) Validate() error {
	var errs shared.ValidationErrors
	if p.Name != nil {
		errs.Required("name", *p.Name)
	}
	if p.ContactEmail != nil && *p.ContactEmail != "" && !strings.Contains(*p.ContactEmail, "@") {
		errs.Add("contactEmail", "must be an email address")
	}
	if p.DefaultCurrency != nil && len(*p.DefaultCurrency) != 3 {
		errs.Add("defaultCurrency", "must be a 3 letter currency code")
	}
	if p.ImportTemplate != nil {
		p.ImportTemplate.Validate(&errs)
	}
	return errs.Err()
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Item is one row of a supplier price list.
type Item struct {
	ID             uuid.UUID         `json:"id"`
	OrganisationID string            `json:"organisationId"`
	SupplierID     uuid.UUID         `json:"supplierId"`
	ImportJobID    *uuid.UUID        `json:"importJobId,omitempty"`
	Brand          string            `json:"brand"`
	SKU            string            `json:"sku"`
	Title          string            `json:"title"`
	ConditionRank  string            `json:"conditionRank"`
	AskPriceUSD    decimal.Decimal   `json:"askPriceUsd"`
	AskPriceEUR    decimal.Decimal   `json:"askPriceEur"`
	Availability   string            `json:"availability"`
	RowHash        string            `json:"rowHash"`
	Raw            map[string]string `json:"raw"`
	CreatedAt      time.Time         `json:"createdAt"`
}
