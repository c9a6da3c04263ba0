package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/shared"
)

// BuyingListHandler handles HTTP requests for the buying list
type BuyingListHandler struct {
	buyingListService service.BuyingListService
	logger            *slog.Logger
}

func NewBuyingListHandler(logger *slog.Logger, buyingListService service.BuyingListService) *BuyingListHandler {
	return &BuyingListHandler{
		buyingListService: buyingListService,
		logger:            logger,
	}
}

func (h *BuyingListHandler) List(c *gin.Context) {
	var q BuyingListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	items, err := h.buyingListService.List(c.Request.Context(), service.BuyingListFilter{
		Status:     buyinglist.Status(q.Status),
		SourceType: buyinglist.SourceType(q.SourceType),
		SupplierID: optionalUUID(q.SupplierID),
	})
	if err != nil {
		respondError(c, h.logger, "Failed to list buying list items", err)
		return
	}
	RespondOK(c, items)
}

func (h *BuyingListHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.buyingListService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to get buying list item", err)
		return
	}
	RespondOK(c, item)
}

func (h *BuyingListHandler) Create(c *gin.Context) {
	var req CreateBuyingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	item, err := h.buyingListService.Create(c.Request.Context(), service.CreateBuyingListInput{
		SourceType: buyinglist.SourceType(req.SourceType),
		ItemDetails: shared.ItemDetails{
			Brand:     req.Brand,
			Model:     req.Model,
			Category:  req.Category,
			Condition: req.Condition,
			Colour:    req.Colour,
		},
		TargetBuyPriceEUR: *req.TargetBuyPriceEUR,
		Notes:             req.Notes,
		SupplierID:        req.SupplierID,
		EvaluationID:      req.EvaluationID,
		LandedCost:        req.LandedCost,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to create buying list item", err)
		return
	}
	RespondCreated(c, item)
}

func (h *BuyingListHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch buyinglist.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	item, err := h.buyingListService.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "Failed to update buying list item", err)
		return
	}
	RespondOK(c, item)
}

func (h *BuyingListHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.buyingListService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "Failed to delete buying list item", err)
		return
	}
	RespondNoContent(c)
}

// Receive turns the item into an in-stock product. A second call for the
// same item is rejected with 400.
func (h *BuyingListHandler) Receive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.buyingListService.Receive(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to receive buying list item", err)
		return
	}
	RespondOK(c, result)
}
