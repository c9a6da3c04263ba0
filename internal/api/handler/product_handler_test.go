package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
)

func productRouter(svc *MockProductService) http.Handler {
	h := NewProductHandler(testLogger(), svc)
	r := setupTestRouter()
	r.GET("/products", h.List)
	r.POST("/products", h.Create)
	r.GET("/products/:id", h.Get)
	r.PUT("/products/:id", h.Update)
	r.DELETE("/products/:id", h.Delete)
	r.POST("/products/:id/sell", h.Sell)
	return r
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockProductService)
		created := product.NewProduct("org", shared.ItemDetails{Brand: "Chanel", Model: "Classic Flap"}, decimal.NewFromInt(5000), decimal.NewFromInt(7500))
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateProductInput) bool {
			return in.Brand == "Chanel" && in.CostPriceEUR.Equal(decimal.NewFromInt(5000)) && in.SellPriceEUR == nil
		})).Return(created, nil).Once()

		rr, env := doJSON(t, productRouter(svc), http.MethodPost, "/products", `{"brand":"Chanel","model":"Classic Flap","costPriceEur":5000}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.NotEmpty(t, env.CorrelationID)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, created.ID.String(), got["id"])
		assert.Equal(t, float64(7500), got["sellPriceEur"])
		svc.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc := new(MockProductService)

		rr, env := doJSON(t, productRouter(svc), http.MethodPost, "/products", `{"model":"Classic Flap"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeValidation, env.Error.Code)
		assert.ElementsMatch(t, []string{"brand", "costPriceEur"}, fieldsOf(t, env))
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		svc := new(MockProductService)

		rr, env := doJSON(t, productRouter(svc), http.MethodPost, "/products", `{"brand`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeBadRequest, env.Error.Code)
	})

	t.Run("DomainValidation", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, shared.ValidationErrors{{Field: "costPriceEur", Message: "must not be negative"}}).Once()

		rr, env := doJSON(t, productRouter(svc), http.MethodPost, "/products", `{"brand":"Chanel","model":"Flap","costPriceEur":-1}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeValidation, env.Error.Code)
		assert.Equal(t, []string{"costPriceEur"}, fieldsOf(t, env))
	})
}

func TestProductHandler_Get(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockProductService)
		id := uuid.New()
		svc.On("Get", mock.Anything, id).Return(nil, product.ErrProductNotFound{ID: id}).Once()

		rr, env := doJSON(t, productRouter(svc), http.MethodGet, "/products/"+id.String(), "")

		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, CodeNotFound, env.Error.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		svc := new(MockProductService)

		rr, env := doJSON(t, productRouter(svc), http.MethodGet, "/products/not-a-uuid", "")

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeBadRequest, env.Error.Code)
	})

	t.Run("InternalErrorHidesDetail", func(t *testing.T) {
		svc := new(MockProductService)
		id := uuid.New()
		svc.On("Get", mock.Anything, id).Return(nil, errors.New("failed to get product: connection refused")).Once()

		rr, env := doJSON(t, productRouter(svc), http.MethodGet, "/products/"+id.String(), "")

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, CodeInternal, env.Error.Code)
		assert.NotContains(t, env.Error.Message, "connection refused")
	})
}

func TestProductHandler_List(t *testing.T) {
	svc := new(MockProductService)
	svc.On("List", mock.Anything, service.ProductFilter{Status: product.StatusInStock, Brand: "Chanel", Search: "flap"}).
		Return([]*product.Product{}, nil).Once()

	rr, env := doJSON(t, productRouter(svc), http.MethodGet, "/products?status=in_stock&brand=Chanel&q=flap", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rr, env = doJSON(t, productRouter(svc), http.MethodGet, "/products?status=lost", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"status"}, fieldsOf(t, env))
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	svc := new(MockProductService)
	id := uuid.New()
	p := product.NewProduct("org", shared.ItemDetails{Brand: "Dior", Model: "Saddle"}, decimal.NewFromInt(1), decimal.NewFromInt(2))
	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(patch product.Patch) bool {
		return patch.Notes != nil && *patch.Notes == "signed" && patch.Brand == nil
	})).Return(p, nil).Once()
	svc.On("Delete", mock.Anything, id).Return(nil).Once()

	rr, _ := doJSON(t, productRouter(svc), http.MethodPut, "/products/"+id.String(), `{"notes":"signed"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = doJSON(t, productRouter(svc), http.MethodDelete, "/products/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_Sell(t *testing.T) {
	t.Run("WithPrice", func(t *testing.T) {
		svc := new(MockProductService)
		id := uuid.New()
		txn := ledger.NewTransaction("org", ledger.TypeSale, decimal.NewFromInt(7200))
		svc.On("Sell", mock.Anything, id, mock.MatchedBy(func(in service.SellInput) bool {
			return in.PriceEUR != nil && in.PriceEUR.Equal(decimal.NewFromInt(7200))
		})).Return(&service.SaleResult{Product: &product.Product{ID: id}, Transaction: txn}, nil).Once()

		rr, env := doJSON(t, productRouter(svc), http.MethodPost, "/products/"+id.String()+"/sell", `{"priceEur":7200}`)

		require.Equal(t, http.StatusOK, rr.Code)
		var got struct {
			Transaction struct {
				Type string `json:"type"`
			} `json:"transaction"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "sale", got.Transaction.Type)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		svc := new(MockProductService)
		id := uuid.New()
		svc.On("Sell", mock.Anything, id, service.SellInput{}).Return(nil, product.ErrAlreadySold{ID: id}).Once()

		rr, env := doJSON(t, productRouter(svc), http.MethodPost, "/products/"+id.String()+"/sell", "")

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, CodeBadRequest, env.Error.Code)
		assert.Equal(t, "Product already sold", env.Error.Message)
	})
}
