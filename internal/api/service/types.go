package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/importer"
	"github.com/shopspring/decimal"
)

// actorAPI is recorded on activity events raised through the REST API.
const actorAPI = "api"

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	Status product.Status
	Brand  string
	Search string
}

func (f ProductFilter) match(p *product.Product) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		haystack := strings.ToLower(p.Brand + " " + p.Model + " " + p.Notes)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

type CreateProductInput struct {
	shared.ItemDetails
	CostPriceEUR decimal.Decimal
	// SellPriceEUR defaults to the cost times the configured markup.
	SellPriceEUR *decimal.Decimal
	Status       product.Status
	Quantity     *int
	Images       []product.Image
	Notes        string
}

type SellInput struct {
	// PriceEUR overrides the product's sell price when set.
	PriceEUR *decimal.Decimal
	Notes    string
}

// SaleResult is the outcome of selling a product.
type SaleResult struct {
	Product     *product.Product    `json:"product"`
	Transaction *ledger.Transaction `json:"transaction"`
}

type BuyingListFilter struct {
	Status     buyinglist.Status
	SourceType buyinglist.SourceType
	SupplierID *uuid.UUID
}

func (f BuyingListFilter) match(i *buyinglist.Item) bool {
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.SourceType != "" && i.SourceType != f.SourceType {
		return false
	}
	if f.SupplierID != nil && (i.SupplierID == nil || *i.SupplierID != *f.SupplierID) {
		return false
	}
	return true
}

type CreateBuyingListInput struct {
	SourceType buyinglist.SourceType
	shared.ItemDetails
	TargetBuyPriceEUR decimal.Decimal
	Notes             string
	SupplierID        *uuid.UUID
	EvaluationID      *string
	LandedCost        *buyinglist.LandedCost
}

// ReceiveResult is the outcome of receiving a buying list item.
type ReceiveResult struct {
	Item    *buyinglist.Item `json:"buyingListItem"`
	Product *product.Product `json:"product"`
}

type CreateSupplierInput struct {
	Name            string
	ContactEmail    string
	DefaultCurrency string
	ImportTemplate  supplier.ImportTemplate
}

type ImportInput struct {
	SupplierID   uuid.UUID
	Filename     string
	Data         []byte
	ExchangeRate decimal.Decimal
	Async        bool
}

// ImportOutcome is returned by SupplierService.Import. Result is set for
// inline runs and Job for queued ones.
type ImportOutcome struct {
	Result *importer.Result `json:"result,omitempty"`
	Job    *job.Job         `json:"job,omitempty"`
	Queued bool             `json:"queued"`
}

type SourcingFilter struct {
	Status sourcing.Status
}

type CreateSourcingInput struct {
	ClientName  string
	Brand       string
	Model       string
	Description string
	BudgetEUR   *decimal.Decimal
	Status      sourcing.Status
	Notes       string
}

type JobFilter struct {
	Status     job.Status
	Type       job.Type
	SupplierID *uuid.UUID
}

func (f JobFilter) match(j *job.Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.Type != "" && j.Type != f.Type {
		return false
	}
	if f.SupplierID != nil && (j.SupplierID == nil || *j.SupplierID != *f.SupplierID) {
		return false
	}
	return true
}

// KPIs are the headline dashboard figures.
type KPIs struct {
	InventoryUnits       int             `json:"inventoryUnits"`
	InventoryValueEUR    decimal.Decimal `json:"inventoryValueEur"`
	LowStockCount        int             `json:"lowStockCount"`
	LowStockThreshold    int             `json:"lowStockThreshold"`
	PendingBuyingCount   int             `json:"pendingBuyingCount"`
	PendingBuyingEUR     decimal.Decimal `json:"pendingBuyingValueEur"`
	RevenueEUR           decimal.Decimal `json:"revenueEur"`
	SpendEUR             decimal.Decimal `json:"spendEur"`
	GrossProfitEUR       decimal.Decimal `json:"grossProfitEur"`
	OpenSourcingRequests int             `json:"openSourcingRequests"`
}

// ProviderStatus reports one backing dependency.
type ProviderStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SystemStatus is served by the status endpoint.
type SystemStatus struct {
	Postgres      ProviderStatus              `json:"postgres"`
	MongoDB       ProviderStatus              `json:"mongodb"`
	AIMode        string                      `json:"aiMode"`
	AIProviders   []string                    `json:"aiProviders"`
	Errors        middleware.ErrorStats       `json:"errors"`
	Jobs          map[job.Status]int          `json:"jobs"`
	Outbox        map[shared.OutboxStatus]int `json:"outbox"`
	UptimeSeconds int64                       `json:"uptimeSeconds"`
	StartedAt     time.Time                   `json:"startedAt"`
}

// MonthlyProfit is one row of the profit summary.
type MonthlyProfit struct {
	Month          string          `json:"month"`
	RevenueEUR     decimal.Decimal `json:"revenueEur"`
	SpendEUR       decimal.Decimal `json:"spendEur"`
	GrossProfitEUR decimal.Decimal `json:"grossProfitEur"`
}

type ProfitSummary struct {
	Months         []MonthlyProfit `json:"months"`
	RevenueEUR     decimal.Decimal `json:"revenueEur"`
	SpendEUR       decimal.Decimal `json:"spendEur"`
	GrossProfitEUR decimal.Decimal `json:"grossProfitEur"`
}

// Pinger checks a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// organisationOf returns the request's organisation, or fallback when the
// context carries none.
func organisationOf(ctx context.Context, fallback string) string {
	if id := middleware.OrganisationIDFromContext(ctx); id != "" {
		return id
	}
	return fallback
}

// inOrganisation reports whether a row belongs to org. Rows without an
// organisation are shared.
func inOrganisation(rowOrg, org string) bool {
	return rowOrg == "" || org == "" || rowOrg == org
}
