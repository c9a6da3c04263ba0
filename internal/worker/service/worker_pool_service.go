package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/resale-ops/internal/domain/shared"
)

// WorkerPoolImportService runs imports from a bounded ants pool.
type WorkerPoolImportService struct {
	baseService ImportProcessor
	pool        *ants.Pool
	logger      *slog.Logger
	releaseWait time.Duration
	stopOnce    sync.Once
}

type WorkerPoolConfig struct {
	Size int
	// ReleaseTimeout bounds how long Shutdown waits for running imports.
	ReleaseTimeout time.Duration
}

func NewWorkerPoolImportService(
	baseService ImportProcessor,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolImportService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolImportService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		releaseWait: config.ReleaseTimeout,
	}, nil
}

// ProcessImport submits the request to the pool and waits for its result.
func (s *WorkerPoolImportService) ProcessImport(ctx context.Context, request *shared.ImportRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Debug("Submitting import to worker pool", "job_id", request.JobID.String())

	resultChan := make(chan error, 1)
	requestCopy := *request

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.ProcessImport(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit import to worker pool",
			"job_id", request.JobID.String(),
			"error", err,
		)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool. It is safe to call more than once.
func (s *WorkerPoolImportService) Shutdown() {
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
		if s.releaseWait <= 0 {
			s.pool.Release()
			return
		}
		if err := s.pool.ReleaseTimeout(s.releaseWait); err != nil {
			s.logger.Warn("Worker pool did not drain before timeout", "error", err)
		}
	})
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolImportService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolImportService) Capacity() int {
	return s.pool.Cap()
}
