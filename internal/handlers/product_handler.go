package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

type ProductHandler struct {
	repo            repository.CatalogRepositoryInterface
	recommendations *services.RecommendationService
}

func NewProductHandler(repo repository.CatalogRepositoryInterface, recommendations *services.RecommendationService) *ProductHandler {
	return &ProductHandler{
		repo:            repo,
		recommendations: recommendations,
	}
}

// ListProducts returns a paged catalog listing
// @Summary List catalog products
// @Tags products
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.CatalogProductListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	products, total, err := h.repo.ListProducts(c.Request.Context(), tenantID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "LIST_FAILED",
				Message: "Failed to list products",
			},
		})
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	c.JSON(http.StatusOK, models.CatalogProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// GetProduct returns a single catalog product
// @Summary Get a catalog product
// @Tags products
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Product ID"
// @Success 200 {object} models.CatalogProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	product, err := h.repo.GetProduct(c.Request.Context(), tenantID, productID)
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
				Code:    "FETCH_FAILED",
				Message: "Failed to fetch product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CatalogProductResponse{Success: true, Data: product})
}

// GetRelatedProducts returns products similar to the given one
// @Summary Get related products
// @Description Returns up to four catalog products ranked by attribute similarity
// @Tags products
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Product ID"
// @Success 200 {object} models.RelatedProductsResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/related [get]
func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	productID := c.Param("id")

	products, err := h.recommendations.RelatedProducts(c.Request.Context(), tenantID, productID)
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
				Code:    "RELATED_FAILED",
				Message: "Failed to compute related products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.RelatedProductsResponse{Success: true, Data: products})
}
