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
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/platform/persistence"
)

// BuyingListServiceImpl implements the BuyingListService interface
type BuyingListServiceImpl struct {
	itemRepo        buyinglist.Repository
	productRepo     product.Repository
	transactionRepo ledger.Repository
	recorder        audit.Recorder
	txRunner        persistence.TxRunner
	cfg             config.InventoryConfig
	logger          *slog.Logger
}

func NewBuyingListService(
	logger *slog.Logger,
	cfg config.InventoryConfig,
	itemRepo buyinglist.Repository,
	productRepo product.Repository,
	transactionRepo ledger.Repository,
	recorder audit.Recorder,
	txRunner persistence.TxRunner,
) BuyingListService {
	return &BuyingListServiceImpl{
		itemRepo:        itemRepo,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		recorder:        recorder,
		txRunner:        txRunner,
		cfg:             cfg,
		logger:          logger,
	}
}

func (s *BuyingListServiceImpl) List(ctx context.Context, filter BuyingListFilter) ([]*buyinglist.Item, error) {
	all, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	org := organisationOf(ctx, s.cfg.DefaultOrganisationID)
	out := make([]*buyinglist.Item, 0, len(all))
	for _, item := range all {
		if inOrganisation(item.OrganisationID, org) && filter.match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *BuyingListServiceImpl) Get(ctx context.Context, id uuid.UUID) (*buyinglist.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, buyinglist.ErrItemNotFound{ID: id}
	}
	return item, nil
}

func (s *BuyingListServiceImpl) Create(ctx context.Context, input CreateBuyingListInput) (*buyinglist.Item, error) {
	org := organisationOf(ctx, s.cfg.DefaultOrganisationID)

	source := input.SourceType
	if source == "" {
		source = buyinglist.SourceManual
	}
	item := buyinglist.NewItem(org, source, input.ItemDetails, input.TargetBuyPriceEUR)
	item.Notes = input.Notes
	item.SupplierID = input.SupplierID
	item.EvaluationID = input.EvaluationID
	item.LandedCost = input.LandedCost
	if err := item.Validate(); err != nil {
		return nil, err
	}

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.itemRepo.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		event, err := activity.NewEvent(org, actorAPI, activity.TypeBuyingListCreated, activity.EntityBuyingListItem, item.ID.String(), map[string]any{
			"brand":      item.Brand,
			"model":      item.Model,
			"sourceType": item.SourceType,
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		return s.recorder.Record(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies patch. Moving an item to received is rejected by the patch
// validation; only Receive may do that. Status changes lock the row first so
// a received item cannot be reopened.
func (s *BuyingListServiceImpl) Update(ctx context.Context, id uuid.UUID, patch buyinglist.Patch) (*buyinglist.Item, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	if patch.Status == nil {
		return s.itemRepo.Update(ctx, id, patch)
	}

	var updated *buyinglist.Item
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		items := s.itemRepo.WithTx(tx)

		current, err := items.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := current.CheckStatusChange(*patch.Status); err != nil {
			return err
		}

		updated, err = items.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BuyingListServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.itemRepo.Delete(ctx, id)
}

// Receive books a buying list item into inventory. Within one transaction it
// locks the item, creates the product and its purchase transaction, records
// the buying_list.received event and flips the item to received.
func (s *BuyingListServiceImpl) Receive(ctx context.Context, id uuid.UUID) (*ReceiveResult, error) {
	var result ReceiveResult

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		items := s.itemRepo.WithTx(tx)

		item, err := items.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := item.CheckReceivable(); err != nil {
			return err
		}

		cost := item.TargetBuyPriceEUR
		p := product.NewProduct(item.OrganisationID, item.ItemDetails, cost, cost.Mul(s.cfg.DefaultMarkup))
		p.BuyingListItemID = &item.ID
		p.Notes = fmt.Sprintf("Received from buying list item %s", item.ID)
		if err := s.productRepo.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}

		txn := ledger.NewTransaction(item.OrganisationID, ledger.TypePurchase, cost)
		txn.ProductID = &p.ID
		txn.BuyingListItemID = &item.ID
		txn.Notes = fmt.Sprintf("Purchase for buying list item %s", item.ID)
		if err := s.transactionRepo.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}

		event, err := activity.NewEvent(item.OrganisationID, actorAPI, activity.TypeBuyingListReceived, activity.EntityBuyingListItem, item.ID.String(), map[string]any{
			"brand":            item.Brand,
			"model":            item.Model,
			"productId":        p.ID.String(),
			"buyingListItemId": item.ID.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to build activity event: %w", err)
		}
		if err := s.recorder.Record(ctx, tx, event); err != nil {
			return err
		}

		if err := items.UpdateStatus(ctx, item.ID, buyinglist.StatusReceived); err != nil {
			return err
		}
		item.Status = buyinglist.StatusReceived
		item.UpdatedAt = time.Now().UTC()

		result = ReceiveResult{Item: item, Product: p}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Buying list item received",
		"buying_list_item_id", id.String(),
		"product_id", result.Product.ID.String(),
		"sell_price", result.Product.SellPriceEUR.String(),
	)
	return &result, nil
}
