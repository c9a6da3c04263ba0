package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/data/postgres"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/mocks"
	"github.com/resale-ops/internal/platform/persistence"
)

type buyingListFixture struct {
	items        *mocks.BuyingListRepository
	products     *mocks.ProductRepository
	transactions *mocks.TransactionRepository
	recorder     *mocks.Recorder
	txRunner     *mocks.TxRunner
	service      BuyingListService
}

func newBuyingListFixture() *buyingListFixture {
	f := &buyingListFixture{
		items:        new(mocks.BuyingListRepository),
		products:     new(mocks.ProductRepository),
		transactions: new(mocks.TransactionRepository),
		recorder:     new(mocks.Recorder),
		txRunner:     &mocks.TxRunner{},
	}
	f.service = NewBuyingListService(newTestLogger(), testInventoryConfig(), f.items, f.products, f.transactions, f.recorder, f.txRunner)
	return f
}

func chanelFlap() *buyinglist.Item {
	item := buyinglist.NewItem(testOrg, buyinglist.SourceManual, shared.ItemDetails{
		Brand:     "Chanel",
		Model:     "Classic Flap",
		Category:  "bag",
		Condition: "excellent",
		Colour:    "black",
	}, dec("5000"))
	return item
}

func TestBuyingListService_Receive(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesProductTransactionAndEvent", func(t *testing.T) {
		f := newBuyingListFixture()
		item := chanelFlap()

		var created *product.Product
		var booked *ledger.Transaction
		var event *activity.Event

		f.items.On("LockForUpdate", ctx, item.ID).Return(item, nil).Once()
		f.products.On("Create", ctx, mock.AnythingOfType("*product.Product")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*product.Product) }).
			Return(nil).Once()
		f.transactions.On("Create", ctx, mock.AnythingOfType("*ledger.Transaction")).
			Run(func(args mock.Arguments) { booked = args.Get(1).(*ledger.Transaction) }).
			Return(nil).Once()
		f.recorder.On("Record", ctx, mock.Anything, mock.AnythingOfType("*activity.Event")).
			Run(func(args mock.Arguments) { event = args.Get(2).(*activity.Event) }).
			Return(nil).Once()
		f.items.On("UpdateStatus", ctx, item.ID, buyinglist.StatusReceived).Return(nil).Once()

		result, err := f.service.Receive(ctx, item.ID)
		require.NoError(t, err)

		assert.Equal(t, buyinglist.StatusReceived, result.Item.Status)
		require.NotNil(t, created)
		assert.Same(t, created, result.Product)
		assert.True(t, dec("5000").Equal(created.CostPriceEUR))
		assert.True(t, dec("7500").Equal(created.SellPriceEUR), "sell price %s", created.SellPriceEUR)
		assert.Equal(t, product.StatusInStock, created.Status)
		assert.Equal(t, 1, created.Quantity)
		assert.Equal(t, shared.CurrencyEUR, created.Currency)
		assert.Equal(t, "Received from buying list item "+item.ID.String(), created.Notes)
		require.NotNil(t, created.BuyingListItemID)
		assert.Equal(t, item.ID, *created.BuyingListItemID)

		require.NotNil(t, booked)
		assert.Equal(t, ledger.TypePurchase, booked.Type)
		assert.True(t, dec("5000").Equal(booked.AmountEUR))
		assert.Equal(t, created.ID, *booked.ProductID)
		assert.Equal(t, item.ID, *booked.BuyingListItemID)

		require.NotNil(t, event)
		assert.Equal(t, activity.TypeBuyingListReceived, event.Type)
		assert.JSONEq(t, `{"brand":"Chanel","model":"Classic Flap","productId":"`+created.ID.String()+`","buyingListItemId":"`+item.ID.String()+`"}`, string(event.Payload))

		assert.Equal(t, 1, f.txRunner.Calls)
		f.items.AssertExpectations(t)
		f.products.AssertExpectations(t)
		f.transactions.AssertExpectations(t)
		f.recorder.AssertExpectations(t)
	})

	t.Run("AlreadyReceivedCreatesNothing", func(t *testing.T) {
		f := newBuyingListFixture()
		item := chanelFlap()
		item.Status = buyinglist.StatusReceived

		f.items.On("LockForUpdate", ctx, item.ID).Return(item, nil).Once()

		result, err := f.service.Receive(ctx, item.ID)
		assert.Nil(t, result)
		assert.Equal(t, buyinglist.ErrAlreadyReceived{ID: item.ID}, err)
		assert.Contains(t, err.Error(), "already received")

		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
		f.items.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CancelledItemIsNotReceivable", func(t *testing.T) {
		f := newBuyingListFixture()
		item := chanelFlap()
		item.Status = buyinglist.StatusCancelled

		f.items.On("LockForUpdate", ctx, item.ID).Return(item, nil).Once()

		_, err := f.service.Receive(ctx, item.ID)
		var notReceivable buyinglist.ErrNotReceivable
		require.ErrorAs(t, err, &notReceivable)
		assert.Equal(t, buyinglist.StatusCancelled, notReceivable.Status)
	})

	t.Run("MissingItem", func(t *testing.T) {
		f := newBuyingListFixture()
		id := uuid.New()
		f.items.On("LockForUpdate", ctx, id).Return(nil, buyinglist.ErrItemNotFound{ID: id}).Once()

		_, err := f.service.Receive(ctx, id)
		assert.ErrorIs(t, err, buyinglist.ErrItemNotFound{})
	})

	t.Run("FailureAfterProductStopsTheFlow", func(t *testing.T) {
		f := newBuyingListFixture()
		item := chanelFlap()
		dbErr := errors.New("insert failed")

		f.items.On("LockForUpdate", ctx, item.ID).Return(item, nil).Once()
		f.products.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.transactions.On("Create", ctx, mock.Anything).Return(dbErr).Once()

		_, err := f.service.Receive(ctx, item.ID)
		assert.ErrorIs(t, err, dbErr)
		f.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
		f.items.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

var buyingListColumnNames = []string{"id", "organisation_id", "source_type", "brand", "model", "category", "condition",
	"colour", "target_buy_price_eur", "status", "notes", "supplier_id", "evaluation_id", "landed_cost",
	"created_at", "updated_at"}

// TestBuyingListService_ReceiveRollsBack runs the receive flow against the
// SQL repositories and checks a failed write rolls the transaction back
// without committing anything.
func TestBuyingListService_ReceiveRollsBack(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	setup := func(t *testing.T) (pgxmock.PgxPoolIface, BuyingListService, *buyinglist.Item) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		t.Cleanup(pool.Close)
		db := persistence.NewPostgresDBWithPool(logger, pool)

		recorder := audit.NewRecorder(postgres.NewActivityRepository(logger, db), postgres.NewOutboxRepository(logger, db), logger)
		svc := NewBuyingListService(logger, testInventoryConfig(),
			postgres.NewBuyingListRepository(logger, db),
			postgres.NewProductRepository(logger, db),
			postgres.NewTransactionRepository(logger, db),
			recorder, db)

		item := chanelFlap()
		pool.ExpectBegin()
		pool.ExpectQuery(`FROM buying_list_items WHERE id = \$1 FOR UPDATE`).WithArgs(item.ID).
			WillReturnRows(pgxmock.NewRows(buyingListColumnNames).AddRow(item.ID, item.OrganisationID, item.SourceType,
				item.Brand, item.Model, item.Category, item.Condition, item.Colour, item.TargetBuyPriceEUR, item.Status,
				item.Notes, item.SupplierID, item.EvaluationID, []byte(nil), item.CreatedAt, item.UpdatedAt))
		return pool, svc, item
	}

	t.Run("TransactionInsertFails", func(t *testing.T) {
		pool, svc, item := setup(t)
		pool.ExpectExec("INSERT INTO products").WithArgs(anyArgs(17)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		pool.ExpectExec("INSERT INTO transactions").WithArgs(anyArgs(9)...).
			WillReturnError(errors.New("connection reset"))
		pool.ExpectRollback()

		result, err := svc.Receive(ctx, item.ID)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, pool.ExpectationsWereMet(), "no commit and no status update may happen")
	})

	t.Run("StatusUpdateFails", func(t *testing.T) {
		pool, svc, item := setup(t)
		pool.ExpectExec("INSERT INTO products").WithArgs(anyArgs(17)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		pool.ExpectExec("INSERT INTO transactions").WithArgs(anyArgs(9)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		pool.ExpectExec("INSERT INTO activity_events").WithArgs(anyArgs(8)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		pool.ExpectQuery("INSERT INTO activity_outbox").WithArgs(anyArgs(5)...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
		pool.ExpectExec(`UPDATE buying_list_items SET status = \$1`).
			WithArgs(buyinglist.StatusReceived, pgxmock.AnyArg(), item.ID).
			WillReturnError(errors.New("serialization failure"))
		pool.ExpectRollback()

		result, err := svc.Receive(ctx, item.ID)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "serialization failure")
		assert.NoError(t, pool.ExpectationsWereMet(), "product, transaction and event are discarded with the rollback")
	})
}

func TestBuyingListService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsReceivedStatus", func(t *testing.T) {
		f := newBuyingListFixture()
		received := buyinglist.StatusReceived

		_, err := f.service.Update(ctx, uuid.New(), buyinglist.Patch{Status: &received})
		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "status", verrs[0].Field)
		f.items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CancelsItem", func(t *testing.T) {
		f := newBuyingListFixture()
		item := chanelFlap()
		cancelled := buyinglist.StatusCancelled
		patch := buyinglist.Patch{Status: &cancelled}

		updated := *item
		updated.Status = cancelled
		f.items.On("LockForUpdate", ctx, item.ID).Return(item, nil).Once()
		f.items.On("Update", ctx, item.ID, patch).Return(&updated, nil).Once()

		got, err := f.service.Update(ctx, item.ID, patch)
		require.NoError(t, err)
		assert.Equal(t, cancelled, got.Status)
		assert.Equal(t, 1, f.txRunner.Calls)
		f.items.AssertExpectations(t)
	})

	t.Run("ReceivedItemCannotBeReopened", func(t *testing.T) {
		for _, to := range []buyinglist.Status{buyinglist.StatusPending, buyinglist.StatusOrdered, buyinglist.StatusCancelled} {
			f := newBuyingListFixture()
			item := chanelFlap()
			item.Status = buyinglist.StatusReceived
			status := to

			f.items.On("LockForUpdate", ctx, item.ID).Return(item, nil).Once()

			got, err := f.service.Update(ctx, item.ID, buyinglist.Patch{Status: &status})
			assert.Nil(t, got)
			assert.Equal(t, buyinglist.ErrAlreadyReceived{ID: item.ID}, err, "to %s", to)
			f.items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("ReceivedItemKeepsNonStatusEdits", func(t *testing.T) {
		f := newBuyingListFixture()
		item := chanelFlap()
		item.Status = buyinglist.StatusReceived
		notes := "boxed with dustbag"
		patch := buyinglist.Patch{Notes: &notes}

		updated := *item
		updated.Notes = notes
		f.items.On("Update", ctx, item.ID, patch).Return(&updated, nil).Once()

		got, err := f.service.Update(ctx, item.ID, patch)
		require.NoError(t, err)
		assert.Equal(t, notes, got.Notes)
		assert.Equal(t, 0, f.txRunner.Calls)
		f.items.AssertNotCalled(t, "LockForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("StatusChangeOnMissingItem", func(t *testing.T) {
		f := newBuyingListFixture()
		id := uuid.New()
		ordered := buyinglist.StatusOrdered
		f.items.On("LockForUpdate", ctx, id).Return(nil, buyinglist.ErrItemNotFound{ID: id}).Once()

		_, err := f.service.Update(ctx, id, buyinglist.Patch{Status: &ordered})
		assert.ErrorIs(t, err, buyinglist.ErrItemNotFound{})
		f.items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyPatchReadsItem", func(t *testing.T) {
		f := newBuyingListFixture()
		id := uuid.New()
		f.items.On("GetByID", ctx, id).Return(nil, nil).Once()

		_, err := f.service.Update(ctx, id, buyinglist.Patch{})
		assert.Equal(t, buyinglist.ErrItemNotFound{ID: id}, err)
	})
}

func TestBuyingListService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newBuyingListFixture()

	f.items.On("Create", ctx, mock.AnythingOfType("*buyinglist.Item")).Return(nil).Once()
	f.recorder.On("Record", ctx, mock.Anything, mock.MatchedBy(func(e *activity.Event) bool {
		return e.Type == activity.TypeBuyingListCreated
	})).Return(nil).Once()

	item, err := f.service.Create(ctx, CreateBuyingListInput{
		ItemDetails:       shared.ItemDetails{Brand: "Hermes", Model: "Birkin 30"},
		TargetBuyPriceEUR: dec("9000"),
	})
	require.NoError(t, err)
	assert.Equal(t, buyinglist.SourceManual, item.SourceType)
	assert.Equal(t, buyinglist.StatusPending, item.Status)
	assert.Equal(t, testOrg, item.OrganisationID)

	_, err = f.service.Create(ctx, CreateBuyingListInput{TargetBuyPriceEUR: dec("-1")})
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	other := chanelFlap()
	other.OrganisationID = "someone-else"
	ordered := chanelFlap()
	ordered.Status = buyinglist.StatusOrdered
	f.items.On("List", ctx).Return([]*buyinglist.Item{item, other, ordered}, nil).Once()

	got, err := f.service.List(ctx, BuyingListFilter{Status: buyinglist.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []*buyinglist.Item{item}, got)
}
