package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/platform/lock"
	"github.com/resale-ops/internal/platform/persistence"
)

// ErrImportInProgress is returned when another import holds the supplier's lock.
type ErrImportInProgress struct {
	SupplierID uuid.UUID
}

func (e ErrImportInProgress) Error() string {
	return "an import is already running for supplier " + e.SupplierID.String()
}

// ErrJobCancelled is returned when asked to run a job that was cancelled
// before it started.
type ErrJobCancelled struct {
	JobID uuid.UUID
}

func (e ErrJobCancelled) Error() string {
	return "import job " + e.JobID.String() + " was cancelled"
}

// Request describes one import run.
type Request struct {
	OrganisationID string
	SupplierID     uuid.UUID
	Filename       string
	Data           []byte
	// Template overrides the supplier's stored template when set.
	Template     *supplier.ImportTemplate
	ExchangeRate decimal.Decimal
	// JobID selects an existing queued job to run. Without it a new job is
	// created when RecordJob is set.
	JobID          *uuid.UUID
	RecordJob      bool
	RecordActivity bool
	Actor          string
}

// Result is the outcome of an import run.
type Result struct {
	JobID *uuid.UUID `json:"jobId,omitempty"`
	job.Summary
}

// Runner runs one import request.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

var _ Runner = (*Pipeline)(nil)

type Config struct {
	LockTTL             time.Duration
	DefaultExchangeRate decimal.Decimal
	// SkipLock disables the per-supplier lock.
	SkipLock bool
}

// Pipeline runs supplier imports.
type Pipeline struct {
	suppliers supplier.Repository
	items     supplier.ItemRepository
	jobs      job.Repository
	recorder  audit.Recorder
	txRunner  persistence.TxRunner
	locker    lock.Locker
	cfg       Config
	logger    *slog.Logger
}

func NewPipeline(
	suppliers supplier.Repository,
	items supplier.ItemRepository,
	jobs job.Repository,
	recorder audit.Recorder,
	txRunner persistence.TxRunner,
	locker lock.Locker,
	cfg Config,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		suppliers: suppliers,
		items:     items,
		jobs:      jobs,
		recorder:  recorder,
		txRunner:  txRunner,
		locker:    locker,
		cfg:       cfg,
		logger:    logger,
	}
}

func lockKey(supplierID uuid.UUID) string {
	return "supplier-import:" + supplierID.String()
}

// Run imports req.Data for the supplier. Rows are stored independently: a
// bad row is counted and reported without affecting the others. A file that
// cannot be parsed fails the whole run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	logger := p.logger.With("supplier_id", req.SupplierID.String(), "filename", req.Filename)

	rate := req.ExchangeRate
	if rate.IsZero() {
		rate = p.cfg.DefaultExchangeRate
	}
	if !rate.IsPositive() {
		return nil, shared.ValidationError{Field: "exchangeRate", Message: "must be positive"}
	}

	if !p.cfg.SkipLock {
		lease, err := p.locker.Obtain(ctx, lockKey(req.SupplierID), p.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, lock.ErrLocked) {
				return nil, ErrImportInProgress{SupplierID: req.SupplierID}
			}
			return nil, err
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release import lock", "error", err)
			}
		}()
	}

	s, err := p.suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, supplier.ErrSupplierNotFound{ID: req.SupplierID}
	}
	template := s.ImportTemplate
	if req.Template != nil {
		template = *req.Template
	}

	j, err := p.startJob(ctx, req, rate)
	if err != nil {
		return nil, err
	}
	result := &Result{Summary: job.Summary{ErrorMessages: []string{}}}
	if j != nil {
		result.JobID = &j.ID
		logger = logger.With("job_id", j.ID.String())
	}

	sheet, err := Parse(req.Filename, req.Data)
	if err != nil {
		logger.Warn("Import file could not be parsed", "error", err)
		p.failJob(ctx, logger, j, err.Error())
		return nil, err
	}

	mapper := NewMapper(sheet.Headers, template)
	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("Import interrupted", "rows_done", result.Total, "error", err)
			p.failJob(ctx, logger, j, "import interrupted: "+err.Error())
			return nil, err
		}
		result.Total++

		item, err := mapper.MapRow(req.SupplierID, row, rate)
		if err != nil {
			result.Errors++
			result.ErrorMessages = append(result.ErrorMessages, err.Error())
			continue
		}
		item.ID = uuid.New()
		item.OrganisationID = req.OrganisationID
		item.ImportJobID = result.JobID
		item.CreatedAt = time.Now().UTC()

		inserted, err := p.items.CreateIfAbsent(ctx, item)
		if err != nil {
			result.Errors++
			result.ErrorMessages = append(result.ErrorMessages, RowError{Row: row.Number, Message: "failed to store item"}.Error())
			continue
		}
		if inserted {
			result.Success++
		} else {
			result.Duplicates++
		}
	}

	if err := p.finish(ctx, req, j, result); err != nil {
		logger.Error("Failed to finish import", "error", err)
		p.failJob(ctx, logger, j, "failed to finish import: "+err.Error())
		return nil, err
	}

	logger.Info("Supplier import finished",
		"total", result.Total,
		"success", result.Success,
		"errors", result.Errors,
		"duplicates", result.Duplicates,
	)
	return result, nil
}

// startJob creates or claims the job tracking this run. It returns nil when
// the run is not tracked.
func (p *Pipeline) startJob(ctx context.Context, req Request, rate decimal.Decimal) (*job.Job, error) {
	if req.JobID != nil {
		j, err := p.jobs.GetByID(ctx, *req.JobID)
		if err != nil {
			return nil, err
		}
		if j == nil {
			return nil, job.ErrJobNotFound{ID: *req.JobID}
		}
		if j.Status == job.StatusCancelled {
			return nil, ErrJobCancelled{JobID: j.ID}
		}
		j.Start()
		if err := p.jobs.Save(ctx, j); err != nil {
			return nil, err
		}
		return j, nil
	}

	if !req.RecordJob {
		return nil, nil
	}
	j, err := job.NewImportJob(req.OrganisationID, req.SupplierID, job.ImportPayload{
		Filename:       req.Filename,
		ExchangeRate:   rate,
		RecordActivity: req.RecordActivity,
		Actor:          req.Actor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build import job: %w", err)
	}
	j.Start()
	if err := p.jobs.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// finish stores the job outcome and the completion event together.
func (p *Pipeline) finish(ctx context.Context, req Request, j *job.Job, result *Result) error {
	if j == nil && !req.RecordActivity {
		return nil
	}

	var event *activity.Event
	if req.RecordActivity {
		payload := map[string]any{
			"supplierId": req.SupplierID.String(),
			"filename":   req.Filename,
			"total":      result.Total,
			"success":    result.Success,
			"errors":     result.Errors,
			"duplicates": result.Duplicates,
		}
		if result.JobID != nil {
			payload["jobId"] = result.JobID.String()
		}
		var err error
		event, err = activity.NewEvent(req.OrganisationID, req.Actor, activity.TypeSupplierImportCompleted,
			activity.EntitySupplier, req.SupplierID.String(), payload)
		if err != nil {
			return fmt.Errorf("failed to build import event: %w", err)
		}
	}

	return p.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if j != nil {
			jobs := p.jobs.WithTx(tx)

			// A cancel that arrived mid-run keeps the job cancelled; the
			// counts are still recorded.
			current, err := jobs.LockForUpdate(ctx, j.ID)
			if err != nil {
				return err
			}
			j.Complete(result.Summary)
			if current.Status == job.StatusCancelled {
				j.Status = job.StatusCancelled
				j.FinishedAt = current.FinishedAt
			}
			if err := jobs.Save(ctx, j); err != nil {
				return err
			}
		}
		if event != nil {
			return p.recorder.Record(ctx, tx, event)
		}
		return nil
	})
}

// failJob marks a tracked run failed so it can be retried. A job cancelled in
// the meantime stays cancelled. It runs detached from ctx, which may already be
// done when the run is interrupted.
func (p *Pipeline) failJob(ctx context.Context, logger *slog.Logger, j *job.Job, reason string) {
	if j == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	err := p.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		jobs := p.jobs.WithTx(tx)

		current, err := jobs.LockForUpdate(ctx, j.ID)
		if err != nil {
			return err
		}
		if current.Status == job.StatusCancelled {
			return nil
		}
		j.Fail(reason)
		return jobs.Save(ctx, j)
	})
	if err != nil {
		logger.Error("Failed to mark import job failed", "error", err)
	}
}
