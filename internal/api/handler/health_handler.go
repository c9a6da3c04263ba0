package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker is a dependency the health endpoint pings.
type Checker interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness checks. Only the write database decides
// whether the instance is healthy.
type HealthHandler struct {
	postgres Checker
	timeout  time.Duration
}

func NewHealthHandler(postgres Checker) *HealthHandler {
	return &HealthHandler{postgres: postgres, timeout: 2 * time.Second}
}

func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "timestamp": time.Now().UTC()}
	if h.postgres != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.postgres.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["postgres"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
