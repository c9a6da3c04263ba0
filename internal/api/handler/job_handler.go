package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/job"
)

// JobHandler handles HTTP requests for system jobs
type JobHandler struct {
	jobService service.JobService
	logger     *slog.Logger
}

func NewJobHandler(logger *slog.Logger, jobService service.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

func (h *JobHandler) List(c *gin.Context) {
	var q JobListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	jobs, err := h.jobService.List(c.Request.Context(), service.JobFilter{
		Status:     job.Status(q.Status),
		Type:       job.Type(q.Type),
		SupplierID: optionalUUID(q.SupplierID),
	})
	if err != nil {
		respondError(c, h.logger, "Failed to list jobs", err)
		return
	}
	RespondOK(c, jobs)
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	j, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to get job", err)
		return
	}
	RespondOK(c, j)
}

// Retry requeues a failed job; the worker picks it up again.
func (h *JobHandler) Retry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	j, err := h.jobService.Retry(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to retry job", err)
		return
	}
	RespondAccepted(c, j)
}

func (h *JobHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	j, err := h.jobService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to cancel job", err)
		return
	}
	RespondOK(c, j)
}
