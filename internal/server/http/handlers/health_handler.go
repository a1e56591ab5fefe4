package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quayside/storefront/internal/server/http/dto"
)

// HealthHandler reports service health.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.checker.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.Envelope{Err: err.Error()})
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "ok"})
}
