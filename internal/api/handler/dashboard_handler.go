package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/service"
)

// DashboardHandler serves the read-only dashboard views
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *slog.Logger
}

func NewDashboardHandler(logger *slog.Logger, dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func (h *DashboardHandler) KPIs(c *gin.Context) {
	kpis, err := h.dashboardService.KPIs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to compute KPIs", err)
		return
	}
	RespondOK(c, kpis)
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	var q LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	entries, err := h.dashboardService.Activity(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, h.logger, "Failed to load activity", err)
		return
	}
	RespondOK(c, entries)
}

func (h *DashboardHandler) Status(c *gin.Context) {
	status, err := h.dashboardService.Status(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to load system status", err)
		return
	}
	RespondOK(c, status)
}

func (h *DashboardHandler) ProfitSummary(c *gin.Context) {
	var q ProfitSummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	summary, err := h.dashboardService.ProfitSummary(c.Request.Context(), q.Months)
	if err != nil {
		respondError(c, h.logger, "Failed to compute profit summary", err)
		return
	}
	RespondOK(c, summary)
}
