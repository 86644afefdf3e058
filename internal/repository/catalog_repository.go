package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-service/internal/cache"
	"storefront-service/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// CatalogListCacheTTL bounds staleness of the cached tenant catalog.
// Recommendations tolerate a few minutes of lag; prices shown in the cart
// view do too, since checkout re-validates against the order pipeline.
const CatalogListCacheTTL = 5 * time.Minute

// CatalogRepositoryInterface defines catalog read-model operations
type CatalogRepositoryInterface interface {
	GetProduct(ctx context.Context, tenantID, productID string) (*models.CatalogProduct, error)
	ListActiveProducts(ctx context.Context, tenantID string) ([]models.CatalogProduct, error)
	ListProducts(ctx context.Context, tenantID string, page, limit int) ([]models.CatalogProduct, int64, error)
	UpsertProducts(ctx context.Context, tenantID string, products []models.CatalogProduct) (int, error)
	SetProductStatus(ctx context.Context, tenantID, productID string, status models.CatalogProductStatus) error
	UpdateProductPrice(ctx context.Context, tenantID, productID string, price float64) error
}

// CatalogRepository is the Postgres-backed catalog read model with an
// optional Redis listing cache in front of the full-catalog reads the
// recommendation scorer performs.
type CatalogRepository struct {
	db    *gorm.DB
	cache *cache.CatalogCache
}

// NewCatalogRepository creates a catalog repository with optional Redis caching
func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) *CatalogRepository {
	return &CatalogRepository{
		db:    db,
		cache: cache.NewCatalogCache(redisClient, CatalogListCacheTTL),
	}
}

// GetProduct returns a single active catalog product.
func (r *CatalogRepository) GetProduct(ctx context.Context, tenantID, productID string) (*models.CatalogProduct, error) {
	var product models.CatalogProduct
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, productID, models.CatalogProductStatusActive).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListActiveProducts returns the full active catalog for a tenant in
// stable created-at order. This is the candidate pool for recommendation
// scoring, so it is served from the Redis cache when possible.
func (r *CatalogRepository) ListActiveProducts(ctx context.Context, tenantID string) ([]models.CatalogProduct, error) {
	if cached, err := r.cache.GetCatalog(ctx, tenantID); err == nil && cached != nil {
		return cached, nil
	}

	var products []models.CatalogProduct
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, models.CatalogProductStatusActive).
		Order("created_at ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	_ = r.cache.SetCatalog(ctx, tenantID, products)
	return products, nil
}

// ListProducts returns a page of the active catalog for storefront listings.
func (r *CatalogRepository) ListProducts(ctx context.Context, tenantID string, page, limit int) ([]models.CatalogProduct, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.CatalogProductStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.CatalogProduct
	err := query.
		Order("created_at ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// UpsertProducts inserts or updates catalog products by (tenant, SKU) and
// invalidates the tenant's listing cache. Used by xlsx import and by
// product event projection.
func (r *CatalogRepository) UpsertProducts(ctx context.Context, tenantID string, products []models.CatalogProduct) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	for i := range products {
		products[i].TenantID = tenantID
		if products[i].Status == "" {
			products[i].Status = models.CatalogProductStatusActive
		}
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "price", "category", "sub_category", "tags",
			"rating", "popularity", "images", "status", "updated_at",
		}),
	}).Create(&products).Error
	if err != nil {
		return 0, err
	}

	_ = r.cache.Invalidate(ctx, tenantID)
	return len(products), nil
}

// SetProductStatus changes a product's status, used by catalog event
// projection when a product is archived or deleted upstream.
func (r *CatalogRepository) SetProductStatus(ctx context.Context, tenantID, productID string, status models.CatalogProductStatus) error {
	result := r.db.WithContext(ctx).Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	_ = r.cache.Invalidate(ctx, tenantID)
	return nil
}

// UpdateProductPrice applies an upstream price change to the read model.
func (r *CatalogRepository) UpdateProductPrice(ctx context.Context, tenantID, productID string, price float64) error {
	result := r.db.WithContext(ctx).Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Update("price", price)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	_ = r.cache.Invalidate(ctx, tenantID)
	return nil
}
