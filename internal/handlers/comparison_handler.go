package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

type ComparisonHandler struct {
	comparisonService *services.ComparisonService
}

func NewComparisonHandler(comparisonService *services.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{comparisonService: comparisonService}
}

// GetComparison returns the current comparison selection
// @Summary Get comparison selection
// @Tags compare
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} models.ComparisonResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /compare [get]
func (h *ComparisonHandler) GetComparison(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	view := h.comparisonService.View(tenantID, sessionID)
	c.JSON(http.StatusOK, models.ComparisonResponse{Success: true, Data: view})
}

// ToggleComparison toggles a product in the comparison selection
// @Summary Toggle a product in the comparison selection
// @Description Adds the product, or removes it when already selected. A full selection rejects new products.
// @Tags compare
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Param toggle body models.ToggleCompareRequest true "Product to toggle"
// @Success 200 {object} models.ComparisonResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /compare/toggle [post]
func (h *ComparisonHandler) ToggleComparison(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	var req models.ToggleCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	view, err := h.comparisonService.Toggle(c.Request.Context(), tenantID, sessionID, req.ProductID)
	if err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "PRODUCT_NOT_FOUND",
					Message: "Product not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "TOGGLE_FAILED",
				Message: "Failed to toggle comparison",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ComparisonResponse{Success: true, Data: view})
}

// RemoveFromComparison drops a product from the comparison selection
// @Summary Remove a product from the comparison selection
// @Tags compare
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} models.ComparisonResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /compare/{productId} [delete]
func (h *ComparisonHandler) RemoveFromComparison(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")
	productID := c.Param("productId")

	view := h.comparisonService.Remove(tenantID, sessionID, productID)
	c.JSON(http.StatusOK, models.ComparisonResponse{Success: true, Data: view})
}

// ClearComparison empties the comparison selection
// @Summary Clear the comparison selection
// @Tags compare
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} models.ComparisonResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /compare [delete]
func (h *ComparisonHandler) ClearComparison(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	view := h.comparisonService.Clear(tenantID, sessionID)
	c.JSON(http.StatusOK, models.ComparisonResponse{Success: true, Data: view})
}
