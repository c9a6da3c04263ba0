package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "organisation_id", "brand", "model", "category", "condition", "colour",
	"cost_price_eur", "sell_price_eur", "currency", "status", "quantity", "images", "notes",
	"buying_list_item_id", "created_at", "updated_at"}

func testProduct() *product.Product {
	p := product.NewProduct("org-1", shared.ItemDetails{Brand: "Chanel", Model: "Classic Flap", Colour: "black"},
		decimal.NewFromInt(5000), decimal.NewFromInt(7500))
	p.CreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt
	return p
}

func addProductRow(rows *pgxmock.Rows, p *product.Product, images string) *pgxmock.Rows {
	return rows.AddRow(p.ID, p.OrganisationID, p.Brand, p.Model, p.Category, p.Condition, p.Colour,
		p.CostPriceEUR, p.SellPriceEUR, p.Currency, p.Status, p.Quantity, []byte(images), p.Notes,
		p.BuyingListItemID, p.CreatedAt, p.UpdatedAt)
}

func TestProductRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ProductRepository{querier: mock, logger: newTestLogger()}
	p := testProduct()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO products").
			WithArgs(p.ID, p.OrganisationID, p.Brand, p.Model, p.Category, p.Condition, p.Colour,
				p.CostPriceEUR, p.SellPriceEUR, p.Currency, p.Status, p.Quantity, []byte("[]"), p.Notes,
				p.BuyingListItemID, p.CreatedAt, p.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation error skips the database", func(t *testing.T) {
		invalid := testProduct()
		invalid.Brand = ""

		err := repo.Create(ctx, invalid)
		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "brand", verrs[0].Field)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec("INSERT INTO products").WithArgs(anyArgs(17)...).WillReturnError(dbErr)

		err := repo.Create(ctx, p)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create product")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ProductRepository{querier: mock, logger: newTestLogger()}
	p := testProduct()
	itemID := uuid.New()
	p.BuyingListItemID = &itemID
	p.Images = []product.Image{{URL: "https://cdn.example.com/flap.jpg", Width: 800, Height: 600}}

	t.Run("success", func(t *testing.T) {
		rows := addProductRow(pgxmock.NewRows(productCols), p, `[{"url":"https://cdn.example.com/flap.jpg","width":800,"height":600}]`)
		mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).WithArgs(p.ID).WillReturnRows(rows)

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found returns nil", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).WithArgs(p.ID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, p.ID)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).WithArgs(p.ID).WillReturnError(errors.New("conn reset"))

		got, err := repo.GetByID(ctx, p.ID)
		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "failed to get product")
	})
}

func TestProductRepository_List(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ProductRepository{querier: mock, logger: newTestLogger()}
	first, second := testProduct(), testProduct()

	rows := pgxmock.NewRows(productCols)
	addProductRow(rows, first, "[]")
	addProductRow(rows, second, "")
	mock.ExpectQuery("SELECT .+ FROM products ORDER BY created_at DESC").WillReturnRows(rows)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, []product.Image{}, got[1].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ProductRepository{querier: mock, logger: newTestLogger()}
	p := testProduct()

	t.Run("writes only patched fields", func(t *testing.T) {
		price := decimal.RequireFromString("7999.999")
		status := product.StatusReserved
		mock.ExpectExec(`UPDATE products SET sell_price_eur = \$1, status = \$2, updated_at = \$3 WHERE id = \$4`).
			WithArgs(decimal.RequireFromString("8000.00"), status, pgxmock.AnyArg(), p.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		updated := *p
		updated.Status = status
		updated.SellPriceEUR = decimal.RequireFromString("8000.00")
		mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).WithArgs(p.ID).
			WillReturnRows(addProductRow(pgxmock.NewRows(productCols), &updated, "[]"))

		got, err := repo.Update(ctx, p.ID, product.Patch{SellPriceEUR: &price, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, product.StatusReserved, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		notes := "moved to window display"
		mock.ExpectExec(`UPDATE products SET notes = \$1`).
			WithArgs(notes, pgxmock.AnyArg(), p.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		got, err := repo.Update(ctx, p.ID, product.Patch{Notes: &notes})
		assert.Nil(t, got)
		assert.Equal(t, product.ErrProductNotFound{ID: p.ID}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row deleted before re-read", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).WithArgs(p.ID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.Update(ctx, p.ID, product.Patch{})
		assert.ErrorIs(t, err, product.ErrProductNotFound{})
	})

	t.Run("invalid patch", func(t *testing.T) {
		qty := -1
		_, err := repo.Update(ctx, p.ID, product.Patch{Quantity: &qty})
		var verrs shared.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ProductRepository{querier: mock, logger: newTestLogger()}
	id := uuid.New()

	mock.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	got, err := repo.LockForUpdate(ctx, id)
	assert.Nil(t, got)
	assert.Equal(t, product.ErrProductNotFound{ID: id}, err)
}

func TestProductRepository_Delete(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ProductRepository{querier: mock, logger: newTestLogger()}
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.NoError(t, repo.Delete(ctx, id), "deleting a missing row is not an error")

	mock.ExpectExec(`DELETE FROM products`).WithArgs(id).WillReturnError(errors.New("fk violation"))
	assert.ErrorContains(t, repo.Delete(ctx, id), "failed to delete product")
	assert.NoError(t, mock.ExpectationsWereMet())
}
