package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/platform/persistence"
)

// SourcingServiceImpl implements the SourcingService interface
type SourcingServiceImpl struct {
	requestRepo  sourcing.Repository
	recorder     audit.Recorder
	txRunner     persistence.TxRunner
	defaultOrgID string
	logger       *slog.Logger
}

func NewSourcingService(logger *slog.Logger, defaultOrgID string, requestRepo sourcing.Repository, recorder audit.Recorder, txRunner persistence.TxRunner) SourcingService {
	return &SourcingServiceImpl{
		requestRepo:  requestRepo,
		recorder:     recorder,
		txRunner:     txRunner,
		defaultOrgID: defaultOrgID,
		logger:       logger,
	}
}

func (s *SourcingServiceImpl) List(ctx context.Context, filter SourcingFilter) ([]*sourcing.Request, error) {
	all, err := s.requestRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	org := organisationOf(ctx, s.defaultOrgID)
	out := make([]*sourcing.Request, 0, len(all))
	for _, r := range all {
		if !inOrganisation(r.OrganisationID, org) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *SourcingServiceImpl) Get(ctx context.Context, id uuid.UUID) (*sourcing.Request, error) {
	r, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, sourcing.ErrRequestNotFound{ID: id}
	}
	return r, nil
}

// Create stores a new request. The status guard does not apply on create, so
// any known status is accepted.
func (s *SourcingServiceImpl) Create(ctx context.Context, input CreateSourcingInput) (*sourcing.Request, error) {
	r := sourcing.NewRequest(organisationOf(ctx, s.defaultOrgID), input.ClientName, input.Brand)
	r.Model = input.Model
	r.Description = input.Description
	r.BudgetEUR = input.BudgetEUR
	r.Notes = input.Notes
	if input.Status != "" {
		r.Status = input.Status
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update applies patch under a row lock. A status change must follow the
// request lifecycle and is recorded as a sourcing.status_changed event.
func (s *SourcingServiceImpl) Update(ctx context.Context, id uuid.UUID, patch sourcing.Patch) (*sourcing.Request, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Status == nil {
		if patch.IsEmpty() {
			return s.Get(ctx, id)
		}
		return s.requestRepo.Update(ctx, id, patch)
	}

	var updated *sourcing.Request
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		requests := s.requestRepo.WithTx(tx)

		current, err := requests.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := sourcing.ValidateTransition(current.Status, *patch.Status); err != nil {
			return err
		}

		updated, err = requests.Update(ctx, id, patch)
		if err != nil {
			return err
		}

		if current.Status == *patch.Status {
			return nil
		}
		event, err := activity.NewEvent(current.OrganisationID, actorAPI, activity.TypeSourcingStatusChanged, activity.EntitySourcing, id.String(), map[string]any{
			"from":       current.Status,
			"to":         *patch.Status,
			"clientName": current.ClientName,
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		return s.recorder.Record(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
