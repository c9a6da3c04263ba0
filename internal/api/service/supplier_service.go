package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/platform/messaging/producers"
	"github.com/resale-ops/internal/platform/storage"
)

// SupplierServiceImpl implements the SupplierService interface
type SupplierServiceImpl struct {
	supplierRepo supplier.Repository
	itemRepo     supplier.ItemRepository
	jobRepo      job.Repository
	runner       importer.Runner
	store        storage.ObjectStore
	producer     producers.MessagePublisher
	cfg          *config.Config
	logger       *slog.Logger
}

func NewSupplierService(
	logger *slog.Logger,
	cfg *config.Config,
	supplierRepo supplier.Repository,
	itemRepo supplier.ItemRepository,
	jobRepo job.Repository,
	runner importer.Runner,
	store storage.ObjectStore,
	producer producers.MessagePublisher,
) SupplierService {
	return &SupplierServiceImpl{
		supplierRepo: supplierRepo,
		itemRepo:     itemRepo,
		jobRepo:      jobRepo,
		runner:       runner,
		store:        store,
		producer:     producer,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *SupplierServiceImpl) organisation(ctx context.Context) string {
	return organisationOf(ctx, s.cfg.Inventory.DefaultOrganisationID)
}

func (s *SupplierServiceImpl) List(ctx context.Context) ([]*supplier.Supplier, error) {
	all, err := s.supplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	org := s.organisation(ctx)
	out := make([]*supplier.Supplier, 0, len(all))
	for _, sup := range all {
		if inOrganisation(sup.OrganisationID, org) {
			out = append(out, sup)
		}
	}
	return out, nil
}

func (s *SupplierServiceImpl) Get(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	sup, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, supplier.ErrSupplierNotFound{ID: id}
	}
	return sup, nil
}

func (s *SupplierServiceImpl) Create(ctx context.Context, input CreateSupplierInput) (*supplier.Supplier, error) {
	sup := supplier.NewSupplier(s.organisation(ctx), input.Name)
	sup.ContactEmail = input.ContactEmail
	if input.DefaultCurrency != "" {
		sup.DefaultCurrency = input.DefaultCurrency
	}
	sup.ImportTemplate = input.ImportTemplate
	if err := sup.Validate(); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Create(ctx, sup); err != nil {
		return nil, err
	}
	s.logger.Info("Supplier created", "supplier_id", sup.ID.String(), "name", sup.Name)
	return sup, nil
}

func (s *SupplierServiceImpl) Update(ctx context.Context, id uuid.UUID, patch supplier.Patch) (*supplier.Supplier, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	return s.supplierRepo.Update(ctx, id, patch)
}

// ListItems returns the imported rows of an existing supplier.
func (s *SupplierServiceImpl) ListItems(ctx context.Context, supplierID uuid.UUID) ([]*supplier.Item, error) {
	if _, err := s.Get(ctx, supplierID); err != nil {
		return nil, err
	}
	return s.itemRepo.ListBySupplier(ctx, supplierID)
}

// Import runs the supplier import. Inline runs return the row summary. Async
// runs store the upload, queue a job and hand it to the worker.
func (s *SupplierServiceImpl) Import(ctx context.Context, input ImportInput) (*ImportOutcome, error) {
	var errs shared.ValidationErrors
	if input.SupplierID == uuid.Nil {
		errs.Add("supplierId", "is required")
	}
	if len(input.Data) == 0 {
		errs.Add("file", "is required")
	}
	if input.ExchangeRate.IsNegative() {
		errs.Add("exchangeRate", "must be positive")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if input.Filename == "" {
		input.Filename = "upload.csv"
	}

	if input.Async {
		return s.enqueueImport(ctx, input)
	}

	result, err := s.runner.Run(ctx, importer.Request{
		OrganisationID: s.organisation(ctx),
		SupplierID:     input.SupplierID,
		Filename:       input.Filename,
		Data:           input.Data,
		ExchangeRate:   input.ExchangeRate,
		RecordJob:      true,
		RecordActivity: true,
		Actor:          actorAPI,
	})
	if err != nil {
		return nil, err
	}
	return &ImportOutcome{Result: result}, nil
}

func (s *SupplierServiceImpl) enqueueImport(ctx context.Context, input ImportInput) (*ImportOutcome, error) {
	if s.producer == nil {
		return nil, ErrQueueUnavailable
	}
	if _, err := s.Get(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	org := s.organisation(ctx)
	rate := input.ExchangeRate
	if rate.IsZero() {
		rate = s.cfg.Import.DefaultExchangeRate
	}

	key := storage.ObjectKey(s.cfg.Storage.ObjectPrefix, input.SupplierID, input.Filename)
	if err := s.store.Put(ctx, key, contentTypeOf(input.Filename), input.Data); err != nil {
		return nil, err
	}

	j, err := job.NewImportJob(org, input.SupplierID, job.ImportPayload{
		Filename:       input.Filename,
		ObjectKey:      key,
		ExchangeRate:   rate,
		RecordActivity: true,
		Actor:          actorAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build import job: %w", err)
	}
	if err := s.jobRepo.Create(ctx, j); err != nil {
		return nil, err
	}

	req := shared.ImportRequest{
		JobID:          j.ID,
		SupplierID:     input.SupplierID,
		OrganisationID: org,
		Filename:       input.Filename,
		ObjectKey:      key,
		ExchangeRate:   rate,
		RecordActivity: true,
		Actor:          actorAPI,
		CorrelationID:  middleware.CorrelationIDFromContext(ctx),
		Timestamp:      time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, input.SupplierID.String(), req); err != nil {
		j.Fail("failed to enqueue import: " + err.Error())
		if saveErr := s.jobRepo.Save(ctx, j); saveErr != nil {
			s.logger.Error("Failed to mark import job failed", "job_id", j.ID.String(), "error", saveErr)
		}
		return nil, err
	}

	s.logger.Info("Supplier import queued",
		"job_id", j.ID.String(),
		"supplier_id", input.SupplierID.String(),
		"object_key", key,
	)
	return &ImportOutcome{Job: j, Queued: true}, nil
}

func contentTypeOf(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
