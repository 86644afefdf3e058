// Package clients provides HTTP clients for service-to-service communication.
package clients

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"

	"time"

	"github.com/google/uuid"
	"storefront-service/internal/models"
)

// CartClient talks to the remote customer-cart API that persists
// authenticated carts. The storefront is local-first: callers treat every
// error from this client as a retryable sync condition, never as a reason
// to roll back session state.
type CartClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCartClient creates a cart client with pooled transport.
func NewCartClient() *CartClient {
	baseURL := os.Getenv("CART_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://customers-service.devtest.svc.cluster.local:8085"
	}
	return NewCartClientWithURL(baseURL)
}

// NewCartClientWithURL creates a cart client against an explicit base URL.
func NewCartClientWithURL(baseURL string) *CartClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	return &CartClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

type remoteCartResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items map[string]map[string]int `json:"items"`
	} `json:"data"`
}

type remoteCartItemPayload struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// FetchCart retrieves the persisted cart for a customer as a nested
// productId -> size -> quantity map.
func (c *CartClient) FetchCart(ctx context.Context, tenantID string, customerID uuid.UUID) (models.Ledger, error) {
	url := fmt.Sprintf("%s/api/v1/customers/%s/cart", c.baseURL, customerID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote cart fetch returned status %d", resp.StatusCode)
	}

	var body remoteCartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode remote cart: %w", err)
	}

	ledger := models.NewLedger()
	for productID, sizes := range body.Data.Items {
		for size, qty := range sizes {
			if productID == "" || size == "" || qty <= 0 {
				continue
			}
			ledger.AddItem(productID, size, qty)
		}
	}
	return ledger, nil
}

// UpdateQuantity sets an absolute quantity for a cart line against the
// persisted cart. Quantity zero removes the line remotely.
func (c *CartClient) UpdateQuantity(ctx context.Context, tenantID string, customerID uuid.UUID, productID, size string, quantity int) error {
	url := fmt.Sprintf("%s/api/v1/customers/%s/cart/items/update", c.baseURL, customerID.String())
	return c.post(ctx, url, tenantID, remoteCartItemPayload{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	})
}

func (c *CartClient) post(ctx context.Context, url, tenantID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote cart update failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("remote cart update returned status %d", resp.StatusCode)
	}
	return nil
}
