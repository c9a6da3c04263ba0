package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
)

// ProductHandler handles HTTP requests for inventory products
type ProductHandler struct {
	productService service.ProductService
	logger         *slog.Logger
}

func NewProductHandler(logger *slog.Logger, productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var q ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	products, err := h.productService.List(c.Request.Context(), service.ProductFilter{
		Status: product.Status(q.Status),
		Brand:  q.Brand,
		Search: q.Search,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to list products", err)
		return
	}
	RespondOK(c, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to get product", err)
		return
	}
	RespondOK(c, p)
}

// Create adds a product. The sell price defaults to cost times the configured markup.
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	p, err := h.productService.Create(c.Request.Context(), service.CreateProductInput{
		ItemDetails: shared.ItemDetails{
			Brand:     req.Brand,
			Model:     req.Model,
			Category:  req.Category,
			Condition: req.Condition,
			Colour:    req.Colour,
		},
		CostPriceEUR: *req.CostPriceEUR,
		SellPriceEUR: req.SellPriceEUR,
		Status:       product.Status(req.Status),
		Quantity:     req.Quantity,
		Images:       req.Images,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to create product", err)
		return
	}
	RespondCreated(c, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch product.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	p, err := h.productService.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "Failed to update product", err)
		return
	}
	RespondOK(c, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "Failed to delete product", err)
		return
	}
	RespondNoContent(c)
}

// Sell marks the product sold and books the sale. An empty body sells at
// the current sell price.
func (h *ProductHandler) Sell(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SellProductRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, h.logger, err)
			return
		}
	}

	result, err := h.productService.Sell(c.Request.Context(), id, service.SellInput{
		PriceEUR: req.PriceEUR,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to sell product", err)
		return
	}
	RespondOK(c, result)
}
