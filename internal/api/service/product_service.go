package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/platform/persistence"
)

// ProductServiceImpl implements the ProductService interface
type ProductServiceImpl struct {
	productRepo     product.Repository
	transactionRepo ledger.Repository
	recorder        audit.Recorder
	txRunner        persistence.TxRunner
	cfg             config.InventoryConfig
	logger          *slog.Logger
}

func NewProductService(
	logger *slog.Logger,
	cfg config.InventoryConfig,
	productRepo product.Repository,
	transactionRepo ledger.Repository,
	recorder audit.Recorder,
	txRunner persistence.TxRunner,
) ProductService {
	return &ProductServiceImpl{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		recorder:        recorder,
		txRunner:        txRunner,
		cfg:             cfg,
		logger:          logger,
	}
}

// List returns the organisation's products, newest first, matching filter.
func (s *ProductServiceImpl) List(ctx context.Context, filter ProductFilter) ([]*product.Product, error) {
	all, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	org := organisationOf(ctx, s.cfg.DefaultOrganisationID)
	out := make([]*product.Product, 0, len(all))
	for _, p := range all {
		if inOrganisation(p.OrganisationID, org) && filter.match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductServiceImpl) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound{ID: id}
	}
	return p, nil
}

// Create stores a product and records a product.created event.
func (s *ProductServiceImpl) Create(ctx context.Context, input CreateProductInput) (*product.Product, error) {
	org := organisationOf(ctx, s.cfg.DefaultOrganisationID)

	sell := input.CostPriceEUR.Mul(s.cfg.DefaultMarkup)
	if input.SellPriceEUR != nil {
		sell = *input.SellPriceEUR
	}

	p := product.NewProduct(org, input.ItemDetails, input.CostPriceEUR, sell)
	p.Notes = input.Notes
	if input.Status != "" {
		p.Status = input.Status
	}
	if input.Quantity != nil {
		p.Quantity = *input.Quantity
	}
	if input.Images != nil {
		p.Images = input.Images
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.productRepo.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}
		event, err := activity.NewEvent(org, actorAPI, activity.TypeProductCreated, activity.EntityProduct, p.ID.String(), map[string]any{
			"brand": p.Brand,
			"model": p.Model,
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		return s.recorder.Record(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created", "product_id", p.ID.String(), "brand", p.Brand)
	return p, nil
}

func (s *ProductServiceImpl) Update(ctx context.Context, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	return s.productRepo.Update(ctx, id, patch)
}

// Delete removes the product without checking it exists.
func (s *ProductServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// Sell locks the product, marks it sold and books a sale transaction plus a
// product.sold event. Any failure rolls back all three.
func (s *ProductServiceImpl) Sell(ctx context.Context, id uuid.UUID, input SellInput) (*SaleResult, error) {
	if input.PriceEUR != nil && input.PriceEUR.IsNegative() {
		return nil, shared.ValidationError{Field: "priceEur", Message: "must not be negative"}
	}

	var result SaleResult
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		products := s.productRepo.WithTx(tx)

		p, err := products.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.MarkSold(); err != nil {
			return err
		}

		price := p.SellPriceEUR
		if input.PriceEUR != nil {
			price = shared.RoundMoney(*input.PriceEUR)
		}

		status := p.Status
		quantity := p.Quantity
		updated, err := products.Update(ctx, p.ID, product.Patch{
			Status:       &status,
			Quantity:     &quantity,
			SellPriceEUR: &price,
		})
		if err != nil {
			return err
		}

		txn := ledger.NewTransaction(p.OrganisationID, ledger.TypeSale, price)
		txn.ProductID = &p.ID
		txn.BuyingListItemID = p.BuyingListItemID
		txn.Notes = input.Notes
		if txn.Notes == "" {
			txn.Notes = fmt.Sprintf("Sale of product %s", p.ID)
		}
		if err := s.transactionRepo.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}

		event, err := activity.NewEvent(p.OrganisationID, actorAPI, activity.TypeProductSold, activity.EntityProduct, p.ID.String(), map[string]any{
			"brand":         p.Brand,
			"model":         p.Model,
			"priceEur":      price,
			"transactionId": txn.ID.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		if err := s.recorder.Record(ctx, tx, event); err != nil {
			return err
		}

		result = SaleResult{Product: updated, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product sold",
		"product_id", id.String(),
		"amount", result.Transaction.AmountEUR.String(),
		"sold_at", result.Transaction.OccurredAt.Format(time.RFC3339),
	)
	return &result, nil
}
