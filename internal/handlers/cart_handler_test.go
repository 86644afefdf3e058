package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

// stubCatalog serves a fixed product set for handler tests.
type stubCatalog struct {
	products map[string]*models.CatalogProduct
}

var _ services.CatalogProvider = (*stubCatalog)(nil)

func (s *stubCatalog) GetProduct(ctx context.Context, tenantID, productID string) (*models.CatalogProduct, error) {
	if product, ok := s.products[productID]; ok {
		return product, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubCatalog) ListActiveProducts(ctx context.Context, tenantID string) ([]models.CatalogProduct, error) {
	out := make([]models.CatalogProduct, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, *product)
	}
	return out, nil
}

// stubRemoteCart accepts every push.
type stubRemoteCart struct{}

func (stubRemoteCart) UpdateQuantity(ctx context.Context, tenantID string, customerID uuid.UUID, productID, size string, quantity int) error {
	return nil
}

// stubFetcher returns a fixed ledger or error on login.
type stubFetcher struct {
	ledger models.Ledger
	err    error
}

func (s *stubFetcher) FetchCart(ctx context.Context, tenantID string, customerID uuid.UUID) (models.Ledger, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ledger, nil
}

func handlerTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newCatalog(ids ...string) *stubCatalog {
	products := make(map[string]*models.CatalogProduct, len(ids))
	for _, id := range ids {
		products[id] = &models.CatalogProduct{
			ID:     uuid.New(),
			Name:   id,
			Price:  10,
			Status: models.CatalogProductStatusActive,
		}
	}
	return &stubCatalog{products: products}
}

// Helper to setup test router with tenant and session context
func setupCartRouter(catalog services.CatalogProvider, fetcher services.RemoteCartFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := handlerTestLogger()

	sync := services.NewCartSyncService(stubRemoteCart{}, logger)
	cartService := services.NewCartService(services.NewSessionStore(), catalog, fetcher, sync, nil, logger)
	handler := NewCartHandler(cartService)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("tenant_id", "tenant-1")
		c.Set("session_id", "sess-1")
		c.Next()
	})
	r.GET("/cart", handler.GetCart)
	r.DELETE("/cart", handler.ClearCart)
	r.POST("/cart/items", handler.AddItem)
	r.PUT("/cart/items", handler.UpdateItem)
	r.POST("/cart/login", handler.Login)
	r.POST("/cart/logout", handler.Logout)
	return r
}

func TestAddItem_Handler_Success(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	body, _ := json.Marshal(map[string]interface{}{
		"productId": "P1",
		"size":      "M",
		"quantity":  2,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/cart/items", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.CartResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.Data.ItemCount)
	assert.InDelta(t, 20.0, response.Data.Subtotal, 0.0001)
}

func TestAddItem_Handler_InvalidJSON(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/cart/items", bytes.NewBuffer([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "INVALID_REQUEST", response.Error.Code)
}

func TestAddItem_Handler_MissingSize(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	body, _ := json.Marshal(map[string]interface{}{"productId": "P1"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/cart/items", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INVALID_REQUEST", response.Error.Code)
}

func TestUpdateItem_Handler_MissingQuantity(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	body, _ := json.Marshal(map[string]interface{}{
		"productId": "P1",
		"size":      "M",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/cart/items", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INVALID_REQUEST", response.Error.Code)
}

func TestUpdateItem_Handler_ZeroOnAbsentLine(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	body, _ := json.Marshal(map[string]interface{}{
		"productId": "P1",
		"size":      "M",
		"quantity":  0,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/cart/items", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	// Removing a line that never existed is idempotent, not an error.
	assert.Equal(t, http.StatusOK, w.Code)

	var response models.CartResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, 0, response.Data.ItemCount)
}

func TestLogin_Handler_InvalidCustomerID(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	body, _ := json.Marshal(map[string]interface{}{"customerId": "not-a-uuid"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/cart/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INVALID_CUSTOMER_ID", response.Error.Code)
}

func TestLogin_Handler_RemoteFetchFailure(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{err: errors.New("connection refused")})

	body, _ := json.Marshal(map[string]interface{}{"customerId": uuid.New().String()})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/cart/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var response models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "LOGIN_FAILED", response.Error.Code)
}

func TestClearCart_Handler(t *testing.T) {
	router := setupCartRouter(newCatalog("P1"), &stubFetcher{})

	body, _ := json.Marshal(map[string]interface{}{
		"productId": "P1",
		"size":      "M",
		"quantity":  2,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/cart/items", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/cart", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.CartResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, 0, response.Data.ItemCount)
	assert.Empty(t, response.Data.Lines)
}
