package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/sourcing"
)

// SourcingHandler handles HTTP requests for client sourcing requests
type SourcingHandler struct {
	sourcingService service.SourcingService
	logger          *slog.Logger
}

func NewSourcingHandler(logger *slog.Logger, sourcingService service.SourcingService) *SourcingHandler {
	return &SourcingHandler{
		sourcingService: sourcingService,
		logger:          logger,
	}
}

func (h *SourcingHandler) List(c *gin.Context) {
	var q SourcingListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	requests, err := h.sourcingService.List(c.Request.Context(), service.SourcingFilter{Status: sourcing.Status(q.Status)})
	if err != nil {
		respondError(c, h.logger, "Failed to list sourcing requests", err)
		return
	}
	RespondOK(c, requests)
}

func (h *SourcingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := h.sourcingService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to get sourcing request", err)
		return
	}
	RespondOK(c, r)
}

func (h *SourcingHandler) Create(c *gin.Context) {
	var req CreateSourcingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	r, err := h.sourcingService.Create(c.Request.Context(), service.CreateSourcingInput{
		ClientName:  req.ClientName,
		Brand:       req.Brand,
		Model:       req.Model,
		Description: req.Description,
		BudgetEUR:   req.BudgetEUR,
		Status:      sourcing.Status(req.Status),
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to create sourcing request", err)
		return
	}
	RespondCreated(c, r)
}

// Update applies a partial update. Status moves outside the lifecycle are
// answered with 409 and the allowed next statuses.
func (h *SourcingHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch sourcing.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	r, err := h.sourcingService.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "Failed to update sourcing request", err)
		return
	}
	RespondOK(c, r)
}
