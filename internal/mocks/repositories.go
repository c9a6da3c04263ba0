// Package mocks provides testify mocks of the domain repositories and
// platform clients shared by the service, worker and handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/outbox"
	"github.com/resale-ops/internal/domain/pricing"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/domain/supplier"
)

// WithTx on every repository mock returns the mock itself, so expectations
// set on it also cover calls made through a transaction.

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *ProductRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepository) Update(ctx context.Context, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepository) WithTx(tx pgx.Tx) product.Repository {
	return m
}

type BuyingListRepository struct {
	mock.Mock
}

func (m *BuyingListRepository) List(ctx context.Context) ([]*buyinglist.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*buyinglist.Item), args.Error(1)
}

func (m *BuyingListRepository) GetByID(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyinglist.Item), args.Error(1)
}

func (m *BuyingListRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyinglist.Item), args.Error(1)
}

func (m *BuyingListRepository) Create(ctx context.Context, item *buyinglist.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *BuyingListRepository) Update(ctx context.Context, id uuid.UUID, patch buyinglist.Patch) (*buyinglist.Item, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyinglist.Item), args.Error(1)
}

func (m *BuyingListRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status buyinglist.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *BuyingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BuyingListRepository) WithTx(tx pgx.Tx) buyinglist.Repository {
	return m
}

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *TransactionRepository) List(ctx context.Context) ([]*ledger.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *TransactionRepository) SumByType(ctx context.Context) (map[ledger.Type]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[ledger.Type]decimal.Decimal), args.Error(1)
}

func (m *TransactionRepository) MonthlyTotals(ctx context.Context, since time.Time) ([]ledger.MonthlyTotals, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.MonthlyTotals), args.Error(1)
}

func (m *TransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return m
}

type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Create(ctx context.Context, e *activity.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*activity.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Event), args.Error(1)
}

func (m *ActivityRepository) List(ctx context.Context, limit int) ([]*activity.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.Event), args.Error(1)
}

func (m *ActivityRepository) WithTx(tx pgx.Tx) activity.Repository {
	return m
}

type FeedRepository struct {
	mock.Mock
}

func (m *FeedRepository) Upsert(ctx context.Context, entry *activity.FeedEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *FeedRepository) GetByEventID(ctx context.Context, eventID string) (*activity.FeedEntry, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.FeedEntry), args.Error(1)
}

func (m *FeedRepository) Recent(ctx context.Context, organisationID string, limit int) ([]*activity.FeedEntry, error) {
	args := m.Called(ctx, organisationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.FeedEntry), args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int), args.Error(1)
}

func (m *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type SupplierRepository struct {
	mock.Mock
}

func (m *SupplierRepository) List(ctx context.Context) ([]*supplier.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*supplier.Supplier), args.Error(1)
}

func (m *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *SupplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SupplierRepository) Update(ctx context.Context, id uuid.UUID, patch supplier.Patch) (*supplier.Supplier, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *SupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SupplierRepository) WithTx(tx pgx.Tx) supplier.Repository {
	return m
}

type SupplierItemRepository struct {
	mock.Mock
}

func (m *SupplierItemRepository) CreateIfAbsent(ctx context.Context, item *supplier.Item) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *SupplierItemRepository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*supplier.Item, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*supplier.Item), args.Error(1)
}

func (m *SupplierItemRepository) WithTx(tx pgx.Tx) supplier.ItemRepository {
	return m
}

type SourcingRepository struct {
	mock.Mock
}

func (m *SourcingRepository) List(ctx context.Context) ([]*sourcing.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sourcing.Request), args.Error(1)
}

func (m *SourcingRepository) GetByID(ctx context.Context, id uuid.UUID) (*sourcing.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Request), args.Error(1)
}

func (m *SourcingRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*sourcing.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Request), args.Error(1)
}

func (m *SourcingRepository) Create(ctx context.Context, r *sourcing.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *SourcingRepository) Update(ctx context.Context, id uuid.UUID, patch sourcing.Patch) (*sourcing.Request, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Request), args.Error(1)
}

func (m *SourcingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SourcingRepository) CountOpen(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *SourcingRepository) WithTx(tx pgx.Tx) sourcing.Repository {
	return m
}

type JobRepository struct {
	mock.Mock
}

func (m *JobRepository) List(ctx context.Context) ([]*job.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*job.Job), args.Error(1)
}

func (m *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *JobRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *JobRepository) Create(ctx context.Context, j *job.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *JobRepository) Save(ctx context.Context, j *job.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *JobRepository) CountByStatus(ctx context.Context) (map[job.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[job.Status]int), args.Error(1)
}

func (m *JobRepository) WithTx(tx pgx.Tx) job.Repository {
	return m
}

type PricingRepository struct {
	mock.Mock
}

func (m *PricingRepository) Create(ctx context.Context, a *pricing.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *PricingRepository) Recent(ctx context.Context, organisationID string, limit int) ([]*pricing.Analysis, error) {
	args := m.Called(ctx, organisationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pricing.Analysis), args.Error(1)
}
