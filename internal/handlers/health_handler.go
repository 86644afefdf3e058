package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"storefront-service/internal/cache"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.CatalogCache
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, catalogCache *cache.CatalogCache) *HealthHandler {
	return &HealthHandler{db: db, cache: catalogCache}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err == nil {
			cacheStatus = "healthy"
		} else {
			cacheStatus = "unreachable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront-service",
		"cache":   cacheStatus,
	})
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
