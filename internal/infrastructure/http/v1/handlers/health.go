package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partbridge/internal/infrastructure/inventree"
	"partbridge/internal/infrastructure/supplier"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	inv      inventree.API
	registry *supplier.Registry
	version  string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(inv inventree.API, registry *supplier.Registry, version string) *HealthHandler {
	return &HealthHandler{inv: inv, registry: registry, version: version}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (can the service reach the inventory system?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.inv.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"inventree": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"inventree": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":       "partbridge",
		"version":   h.version,
		"suppliers": h.registry.Slugs(),
	})
}
