package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/platform/storage"
)

// ImportService loads the stored upload for a queued job and runs it through
// the import pipeline.
type ImportService struct {
	runner importer.Runner
	store  storage.ObjectStore
	jobs   job.Repository
	logger *slog.Logger
}

func NewImportService(
	runner importer.Runner,
	store storage.ObjectStore,
	jobs job.Repository,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		runner: runner,
		store:  store,
		jobs:   jobs,
		logger: logger,
	}
}

// ProcessImport returns an error only when the request may succeed if
// redelivered. Requests that can never succeed fail their job and return nil
// so the message is committed.
func (s *ImportService) ProcessImport(ctx context.Context, request *shared.ImportRequest) error {
	logger := s.logger.With("job_id", request.JobID.String(), "supplier_id", request.SupplierID.String())
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	data, err := s.store.Get(ctx, request.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warn("Import file missing from storage", "object_key", request.ObjectKey)
			return s.failJob(ctx, logger, request, "import file is no longer available")
		}
		return fmt.Errorf("failed to load import file %s: %w", request.ObjectKey, err)
	}

	jobID := request.JobID
	result, err := s.runner.Run(ctx, importer.Request{
		OrganisationID: request.OrganisationID,
		SupplierID:     request.SupplierID,
		Filename:       request.Filename,
		Data:           data,
		ExchangeRate:   request.ExchangeRate,
		JobID:          &jobID,
		RecordJob:      true,
		RecordActivity: request.RecordActivity,
		Actor:          request.Actor,
	})
	if err != nil {
		var cancelled importer.ErrJobCancelled
		var validationErr shared.ValidationError
		var validationErrs shared.ValidationErrors
		switch {
		case errors.As(err, &cancelled):
			logger.Info("Skipping cancelled import job")
			return nil
		case errors.Is(err, importer.ErrUnparsableFile):
			// The pipeline has already failed the job.
			return nil
		case errors.Is(err, job.ErrJobNotFound{}):
			logger.Warn("Dropping import request for unknown job")
			return nil
		case errors.Is(err, supplier.ErrSupplierNotFound{}),
			errors.As(err, &validationErr),
			errors.As(err, &validationErrs):
			return s.failJob(ctx, logger, request, err.Error())
		}
		logger.Error("Import run failed", "error", err)
		return fmt.Errorf("import job %s failed: %w", request.JobID.String(), err)
	}

	logger.Info("Import job processed",
		"total", result.Total,
		"success", result.Success,
		"errors", result.Errors,
		"duplicates", result.Duplicates,
	)
	return nil
}

func (s *ImportService) failJob(ctx context.Context, logger *slog.Logger, request *shared.ImportRequest, reason string) error {
	j, err := s.jobs.GetByID(ctx, request.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", request.JobID.String(), err)
	}
	if j == nil || j.CanCancel() != nil {
		return nil
	}
	j.Fail(reason)
	if err := s.jobs.Save(ctx, j); err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", request.JobID.String(), err)
	}
	logger.Warn("Import job failed", "reason", reason)
	return nil
}
