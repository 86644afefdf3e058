package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogProductStatus represents the status of a catalog product
type CatalogProductStatus string

const (
	CatalogProductStatusActive   CatalogProductStatus = "ACTIVE"
	CatalogProductStatusInactive CatalogProductStatus = "INACTIVE"
	CatalogProductStatusArchived CatalogProductStatus = "ARCHIVED"
)

// CatalogProduct is the read model of a storefront product. The storefront
// treats it as read-only input: it is seeded by catalog import and by
// product events, never mutated by shopper traffic.
type CatalogProduct struct {
	ID          uuid.UUID            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string               `json:"tenantId" gorm:"not null;index:idx_catalog_tenant;index:idx_catalog_tenant_sku,unique"`
	SKU         string               `json:"sku" gorm:"not null;index:idx_catalog_tenant_sku,unique"`
	Name        string               `json:"name" gorm:"not null"`
	Price       float64              `json:"price" gorm:"type:decimal(12,2);not null"`
	Category    string               `json:"category" gorm:"index"`
	SubCategory string               `json:"subCategory"`
	Tags        *JSONArray           `json:"tags,omitempty" gorm:"type:jsonb"`
	Rating      *float64             `json:"rating,omitempty"`
	Popularity  *int                 `json:"popularity,omitempty"`
	Images      *JSONArray           `json:"images,omitempty" gorm:"type:jsonb"`
	Status      CatalogProductStatus `json:"status" gorm:"not null;default:'ACTIVE'"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt      `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the CatalogProduct model
func (CatalogProduct) TableName() string {
	return "catalog_products"
}

// TagList returns the product tags as strings.
func (p *CatalogProduct) TagList() []string {
	if p.Tags == nil {
		return nil
	}
	return p.Tags.StringSlice()
}

// FirstImage returns the first image URL, empty when none is set.
func (p *CatalogProduct) FirstImage() string {
	if p.Images == nil {
		return ""
	}
	images := p.Images.StringSlice()
	if len(images) == 0 {
		return ""
	}
	return images[0]
}

// RatingValue returns the rating or zero when unset.
func (p *CatalogProduct) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// CompareSnapshot builds the comparison snapshot for this product.
func (p *CatalogProduct) CompareSnapshot() CompareItem {
	return CompareItem{
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.FirstImage(),
		Rating:    p.RatingValue(),
		Tags:      p.TagList(),
	}
}

// CatalogProductResponse wraps a single catalog product
type CatalogProductResponse struct {
	Success bool            `json:"success"`
	Data    *CatalogProduct `json:"data"`
	Message *string         `json:"message,omitempty"`
}

// CatalogProductListResponse wraps a paged catalog listing
type CatalogProductListResponse struct {
	Success    bool             `json:"success"`
	Data       []CatalogProduct `json:"data"`
	Pagination *PaginationInfo  `json:"pagination"`
}

// RelatedProductsResponse wraps the ranked related-products shortlist
type RelatedProductsResponse struct {
	Success bool             `json:"success"`
	Data    []CatalogProduct `json:"data"`
	Message *string          `json:"message,omitempty"`
}

// CatalogImportResult summarizes an xlsx catalog import
type CatalogImportResult struct {
	TotalRows    int      `json:"totalRows"`
	ImportedRows int      `json:"importedRows"`
	SkippedRows  int      `json:"skippedRows"`
	Errors       []string `json:"errors,omitempty"`
}

// CatalogImportResponse wraps an import result
type CatalogImportResponse struct {
	Success bool                `json:"success"`
	Data    CatalogImportResult `json:"data"`
	Message *string             `json:"message,omitempty"`
}
