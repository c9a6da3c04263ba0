package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/pricing"
)

// PricingHandler handles AI pricing research requests
type PricingHandler struct {
	pricingService service.PricingService
	logger         *slog.Logger
}

func NewPricingHandler(logger *slog.Logger, pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		logger:         logger,
	}
}

// Analyse runs market research for an item. Provider failures surface as
// UPSTREAM_ERROR.
func (h *PricingHandler) Analyse(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	analysis, err := h.pricingService.Analyse(c.Request.Context(), pricing.Query{
		Brand:     req.Brand,
		Model:     req.Model,
		Category:  req.Category,
		Condition: req.Condition,
		Colour:    req.Colour,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, "Pricing analysis failed", err)
		return
	}
	RespondOK(c, analysis)
}

func (h *PricingHandler) Recent(c *gin.Context) {
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	analyses, err := h.pricingService.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, h.logger, "Failed to list pricing analyses", err)
		return
	}
	RespondOK(c, analyses)
}
