package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart returns the session cart
// @Summary Get the session cart
// @Description Returns the cart lines, item count and subtotal for the current session
// @Tags cart
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	view, err := h.cartService.View(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CART_FETCH_FAILED",
				Message: "Failed to fetch cart",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Success: true, Data: view})
}

// AddItem adds an item to the session cart
// @Summary Add an item to the cart
// @Description Increments the quantity for (productId, size); size is required
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Param item body models.AddCartItemRequest true "Item to add"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	var req models.AddCartItemRequest
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

	view, err := h.cartService.AddItem(c.Request.Context(), tenantID, sessionID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "ADD_ITEM_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Success: true, Data: view})
}

// UpdateItem sets an absolute quantity for a cart line
// @Summary Update a cart line quantity
// @Description Sets the quantity for (productId, size); zero removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Param item body models.UpdateCartItemRequest true "Line to update"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	var req models.UpdateCartItemRequest
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

	view, err := h.cartService.SetQuantity(c.Request.Context(), tenantID, sessionID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UPDATE_ITEM_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Success: true, Data: view})
}

// ClearCart empties the session cart
// @Summary Clear the cart
// @Tags cart
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	view, err := h.cartService.Clear(c.Request.Context(), tenantID, sessionID, "manual")
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CLEAR_FAILED",
				Message: "Failed to clear cart",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Success: true, Data: view})
}

// Login binds a customer to the session and hydrates the cart
// @Summary Bind a customer to the session
// @Description Replaces the local cart with the customer's persisted cart
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Param login body models.LoginRequest true "Customer binding"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /cart/login [post]
func (h *CartHandler) Login(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	var req models.LoginRequest
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

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_CUSTOMER_ID",
				Message: "Invalid customer ID",
			},
		})
		return
	}

	view, err := h.cartService.Login(c.Request.Context(), tenantID, sessionID, customerID)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "LOGIN_FAILED",
				Message: "Failed to fetch customer cart",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Success: true, Data: view})
}

// Logout unbinds the customer from the session
// @Summary Unbind the customer from the session
// @Description Detaches the customer identity; the local cart is kept
// @Tags cart
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} models.CartResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/logout [post]
func (h *CartHandler) Logout(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	sessionID := c.GetString("session_id")

	view, err := h.cartService.Logout(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "LOGOUT_FAILED",
				Message: "Failed to unbind session",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Success: true, Data: view})
}
