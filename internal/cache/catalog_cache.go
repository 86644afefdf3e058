package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront-service/internal/models"
)

// CatalogCache handles caching of the tenant catalog listing in Redis. It
// degrades gracefully: with no Redis client every operation is a no-op and
// reads go straight to Postgres.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Redis client.
// A nil client disables caching.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{client: client, ttl: ttl}
}

func catalogKey(tenantID string) string {
	return fmt.Sprintf("storefront:catalog:%s", tenantID)
}

// GetCatalog returns the cached catalog listing for a tenant, nil on miss
// or when the cache is unavailable.
func (c *CatalogCache) GetCatalog(ctx context.Context, tenantID string) ([]models.CatalogProduct, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, catalogKey(tenantID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.CatalogProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetCatalog caches the catalog listing for a tenant.
func (c *CatalogCache) SetCatalog(ctx context.Context, tenantID string, products []models.CatalogProduct) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(tenantID), data, c.ttl).Err()
}

// Invalidate drops the cached catalog listing for a tenant. Called after
// imports and product events.
func (c *CatalogCache) Invalidate(ctx context.Context, tenantID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, catalogKey(tenantID)).Err()
}

// Ping checks cache availability.
func (c *CatalogCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis not configured")
	}
	return c.client.Ping(ctx).Err()
}
