package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/pricing"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/domain/supplier"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter service.ProductFilter) ([]*product.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input service.CreateProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Sell(ctx context.Context, id uuid.UUID, input service.SellInput) (*service.SaleResult, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaleResult), args.Error(1)
}

type MockBuyingListService struct {
	mock.Mock
}

func (m *MockBuyingListService) List(ctx context.Context, filter service.BuyingListFilter) ([]*buyinglist.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*buyinglist.Item), args.Error(1)
}

func (m *MockBuyingListService) Get(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyinglist.Item), args.Error(1)
}

func (m *MockBuyingListService) Create(ctx context.Context, input service.CreateBuyingListInput) (*buyinglist.Item, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyinglist.Item), args.Error(1)
}

func (m *MockBuyingListService) Update(ctx context.Context, id uuid.UUID, patch buyinglist.Patch) (*buyinglist.Item, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyinglist.Item), args.Error(1)
}

func (m *MockBuyingListService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBuyingListService) Receive(ctx context.Context, id uuid.UUID) (*service.ReceiveResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReceiveResult), args.Error(1)
}

type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) List(ctx context.Context) ([]*supplier.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierService) Get(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierService) Create(ctx context.Context, input service.CreateSupplierInput) (*supplier.Supplier, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierService) Update(ctx context.Context, id uuid.UUID, patch supplier.Patch) (*supplier.Supplier, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierService) ListItems(ctx context.Context, supplierID uuid.UUID) ([]*supplier.Item, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*supplier.Item), args.Error(1)
}

func (m *MockSupplierService) Import(ctx context.Context, input service.ImportInput) (*service.ImportOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportOutcome), args.Error(1)
}

type MockSourcingService struct {
	mock.Mock
}

func (m *MockSourcingService) List(ctx context.Context, filter service.SourcingFilter) ([]*sourcing.Request, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sourcing.Request), args.Error(1)
}

func (m *MockSourcingService) Get(ctx context.Context, id uuid.UUID) (*sourcing.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Request), args.Error(1)
}

func (m *MockSourcingService) Create(ctx context.Context, input service.CreateSourcingInput) (*sourcing.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Request), args.Error(1)
}

func (m *MockSourcingService) Update(ctx context.Context, id uuid.UUID, patch sourcing.Patch) (*sourcing.Request, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Request), args.Error(1)
}

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) List(ctx context.Context, filter service.JobFilter) ([]*job.Job, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*job.Job), args.Error(1)
}

func (m *MockJobService) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobService) Retry(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobService) Cancel(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) KPIs(ctx context.Context) (*service.KPIs, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.KPIs), args.Error(1)
}

func (m *MockDashboardService) Activity(ctx context.Context, limit int) ([]*activity.FeedEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.FeedEntry), args.Error(1)
}

func (m *MockDashboardService) Status(ctx context.Context) (*service.SystemStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SystemStatus), args.Error(1)
}

func (m *MockDashboardService) ProfitSummary(ctx context.Context, months int) (*service.ProfitSummary, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProfitSummary), args.Error(1)
}

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Analyse(ctx context.Context, query pricing.Query) (*pricing.Analysis, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Analysis), args.Error(1)
}

func (m *MockPricingService) Recent(ctx context.Context, limit int) ([]*pricing.Analysis, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pricing.Analysis), args.Error(1)
}
