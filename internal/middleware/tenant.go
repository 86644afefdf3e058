package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
)

// TenantMiddleware extracts the X-Tenant-ID header and sets it in context
// so handlers can use c.GetString("tenant_id"). Requests without a tenant
// are rejected; every storefront resource is tenant scoped.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			tenantID = c.GetHeader("X-Tenant-ID")
		}

		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "TENANT_REQUIRED",
					Message: "X-Tenant-ID header is required",
				},
			})
			return
		}

		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

// SessionMiddleware extracts the X-Session-ID header identifying the
// shopper's browser session. Cart and comparison state is keyed by it, so
// requests without one are rejected on the routes that need it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "SESSION_REQUIRED",
					Message: "X-Session-ID header is required",
				},
			})
			return
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}
