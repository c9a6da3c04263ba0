package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/pricing"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/domain/supplier"
)

// ProductService defines inventory operations
type ProductService interface {
	List(ctx context.Context, filter ProductFilter) ([]*product.Product, error)
	// Get returns ErrProductNotFound if the product doesn't exist
	Get(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*product.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch product.Patch) (*product.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Sell marks the product sold and books the sale in one transaction
	Sell(ctx context.Context, id uuid.UUID, input SellInput) (*SaleResult, error)
}

// BuyingListService defines buying list operations
type BuyingListService interface {
	List(ctx context.Context, filter BuyingListFilter) ([]*buyinglist.Item, error)
	Get(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error)
	Create(ctx context.Context, input CreateBuyingListInput) (*buyinglist.Item, error)
	Update(ctx context.Context, id uuid.UUID, patch buyinglist.Patch) (*buyinglist.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Receive turns the item into an in-stock product. It returns
	// ErrAlreadyReceived when called a second time for the same item.
	Receive(ctx context.Context, id uuid.UUID) (*ReceiveResult, error)
}

// SupplierService defines supplier and import operations
type SupplierService interface {
	List(ctx context.Context) ([]*supplier.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error)
	Create(ctx context.Context, input CreateSupplierInput) (*supplier.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, patch supplier.Patch) (*supplier.Supplier, error)
	ListItems(ctx context.Context, supplierID uuid.UUID) ([]*supplier.Item, error)
	// Import runs the import inline, or queues it for the worker when input.Async is set
	Import(ctx context.Context, input ImportInput) (*ImportOutcome, error)
}

// SourcingService defines sourcing request operations
type SourcingService interface {
	List(ctx context.Context, filter SourcingFilter) ([]*sourcing.Request, error)
	Get(ctx context.Context, id uuid.UUID) (*sourcing.Request, error)
	Create(ctx context.Context, input CreateSourcingInput) (*sourcing.Request, error)
	// Update returns ErrInvalidTransition when the patch moves the status
	// outside the request lifecycle
	Update(ctx context.Context, id uuid.UUID, patch sourcing.Patch) (*sourcing.Request, error)
}

// JobService defines system job operations
type JobService interface {
	List(ctx context.Context, filter JobFilter) ([]*job.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*job.Job, error)
	Retry(ctx context.Context, id uuid.UUID) (*job.Job, error)
	Cancel(ctx context.Context, id uuid.UUID) (*job.Job, error)
}

// DashboardService aggregates read-only views for the dashboard
type DashboardService interface {
	KPIs(ctx context.Context) (*KPIs, error)
	Activity(ctx context.Context, limit int) ([]*activity.FeedEntry, error)
	Status(ctx context.Context) (*SystemStatus, error)
	ProfitSummary(ctx context.Context, months int) (*ProfitSummary, error)
}

// PricingService runs AI assisted market research
type PricingService interface {
	Analyse(ctx context.Context, query pricing.Query) (*pricing.Analysis, error)
	Recent(ctx context.Context, limit int) ([]*pricing.Analysis, error)
}
