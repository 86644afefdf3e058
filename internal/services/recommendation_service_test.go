package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// MockCatalogProvider is a mock implementation of CatalogProvider
type MockCatalogProvider struct {
	mock.Mock
}

var _ CatalogProvider = (*MockCatalogProvider)(nil)

func (m *MockCatalogProvider) GetProduct(ctx context.Context, tenantID, productID string) (*models.CatalogProduct, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogProduct), args.Error(1)
}

func (m *MockCatalogProvider) ListActiveProducts(ctx context.Context, tenantID string) ([]models.CatalogProduct, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CatalogProduct), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func catalogProduct(name, category, subCategory string, tags []string, price float64, rating float64, popularity int) models.CatalogProduct {
	r := rating
	p := popularity
	return models.CatalogProduct{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		SKU:         "SKU-" + name,
		Name:        name,
		Price:       price,
		Category:    category,
		SubCategory: subCategory,
		Tags:        models.ToJSONArray(tags),
		Rating:      &r,
		Popularity:  &p,
		Status:      models.CatalogProductStatusActive,
	}
}

func TestScoreAndRank_WeightedSimilarity(t *testing.T) {
	reference := catalogProduct("A", "shoes", "running", []string{"red"}, 100, 4, 10)
	candidate := catalogProduct("B", "shoes", "running", []string{"red", "nike"}, 110, 4.5, 5)

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference, candidate})

	assert.Len(t, ranked, 1)
	assert.Equal(t, candidate.ID, ranked[0].product.ID)
	// 40 category + 30 sub-category + 10 tag overlap + 12 price + 4.5 rating + 0.25 popularity
	assert.InDelta(t, 96.75, ranked[0].score, 0.0001)
}

func TestScoreAndRank_ExcludesReference(t *testing.T) {
	reference := catalogProduct("A", "shoes", "running", []string{"red"}, 100, 4, 10)

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference})
	assert.Empty(t, ranked)
}

func TestScoreAndRank_GatesUnrelatedHighScorers(t *testing.T) {
	reference := catalogProduct("A", "shoes", "running", []string{"red"}, 100, 4, 10)
	// Same price, top rating and popularity, but a different category and no
	// shared tags. Raw score exceeds the threshold yet it must not qualify.
	unrelated := catalogProduct("X", "hats", "beanies", []string{"wool"}, 100, 5, 500)

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference, unrelated})
	assert.Empty(t, ranked)
}

func TestScoreAndRank_TagOverlapAloneQualifies(t *testing.T) {
	reference := catalogProduct("A", "shoes", "running", []string{"red", "mesh"}, 100, 4, 10)
	// Different category but overlapping tags plus price/rating similarity.
	crossover := catalogProduct("Y", "apparel", "tops", []string{"red", "mesh"}, 100, 4, 10)

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference, crossover})

	assert.Len(t, ranked, 1)
	assert.Equal(t, crossover.ID, ranked[0].product.ID)
}

func TestScoreAndRank_BelowThresholdFiltered(t *testing.T) {
	reference := catalogProduct("A", "shoes", "running", []string{"red", "mesh"}, 100, 4, 10)
	// One shared tag out of two is its only similarity. A far-off price,
	// no rating and no popularity keeps it under the threshold.
	weak := models.CatalogProduct{
		ID:       uuid.New(),
		TenantID: "tenant-1",
		SKU:      "SKU-weak",
		Name:     "weak",
		Price:    5000,
		Category: "electronics",
		Tags:     models.ToJSONArray([]string{"red"}),
		Status:   models.CatalogProductStatusActive,
	}

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference, weak})
	assert.Empty(t, ranked)
}

func TestScoreAndRank_CaseInsensitiveTrimmedMatching(t *testing.T) {
	reference := catalogProduct("A", "Shoes ", "Running", []string{"Red"}, 100, 4, 10)
	candidate := catalogProduct("B", " shoes", "running ", []string{"RED"}, 100, 4, 10)

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference, candidate})

	assert.Len(t, ranked, 1)
	// 40 + 30 + 20 full tag overlap + 15 exact price + 4 rating + 0.5 popularity
	assert.InDelta(t, 109.5, ranked[0].score, 0.0001)
}

func TestScoreAndRank_TopFourStableOrder(t *testing.T) {
	reference := catalogProduct("ref", "shoes", "running", []string{"red"}, 100, 4, 10)

	catalog := []models.CatalogProduct{reference}
	for i := 0; i < 6; i++ {
		// Identical candidates score identically; stable sort must keep
		// their catalog order.
		catalog = append(catalog, catalogProduct(fmt.Sprintf("C%d", i), "shoes", "running", []string{"red"}, 100, 4, 10))
	}

	ranked := scoreAndRank(&reference, catalog)

	assert.Len(t, ranked, maxRelatedResults)
	for i := 0; i < maxRelatedResults; i++ {
		assert.Equal(t, catalog[i+1].ID, ranked[i].product.ID)
	}
}

func TestScoreAndRank_EmptyCatalog(t *testing.T) {
	reference := catalogProduct("A", "shoes", "running", []string{"red"}, 100, 4, 10)

	ranked := scoreAndRank(&reference, nil)
	assert.Empty(t, ranked)
}

func TestScoreAndRank_NoCategoryNoTagsYieldsNothing(t *testing.T) {
	reference := models.CatalogProduct{
		ID:       uuid.New(),
		TenantID: "tenant-1",
		SKU:      "SKU-bare",
		Name:     "bare",
		Price:    100,
		Status:   models.CatalogProductStatusActive,
	}
	candidate := catalogProduct("B", "shoes", "running", []string{"red"}, 100, 5, 100)

	ranked := scoreAndRank(&reference, []models.CatalogProduct{reference, candidate})
	assert.Empty(t, ranked)
}

func TestRelatedProducts_UsesCatalogProvider(t *testing.T) {
	ctx := context.Background()
	reference := catalogProduct("A", "shoes", "running", []string{"red"}, 100, 4, 10)
	candidate := catalogProduct("B", "shoes", "running", []string{"red", "nike"}, 110, 4.5, 5)

	mockCatalog := new(MockCatalogProvider)
	mockCatalog.On("GetProduct", ctx, "tenant-1", reference.ID.String()).Return(&reference, nil)
	mockCatalog.On("ListActiveProducts", ctx, "tenant-1").
		Return([]models.CatalogProduct{reference, candidate}, nil)

	service := NewRecommendationService(mockCatalog, testLogger())
	products, err := service.RelatedProducts(ctx, "tenant-1", reference.ID.String())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, candidate.ID, products[0].ID)
	mockCatalog.AssertExpectations(t)
}

func TestRelatedProducts_UnknownReference(t *testing.T) {
	ctx := context.Background()

	mockCatalog := new(MockCatalogProvider)
	mockCatalog.On("GetProduct", ctx, "tenant-1", "missing").Return(nil, repository.ErrNotFound)

	service := NewRecommendationService(mockCatalog, testLogger())
	products, err := service.RelatedProducts(ctx, "tenant-1", "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, products)
	mockCatalog.AssertExpectations(t)
}
