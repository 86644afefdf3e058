package services

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

const (
	categoryWeight    = 40.0
	subCategoryWeight = 30.0
	tagWeight         = 20.0
	priceWeight       = 15.0
	ratingWeight      = 5.0
	popularityCap     = 5.0

	// minRelatedScore gates out weak matches; combined with the
	// category-or-tag requirement below it keeps price and rating
	// similarity from qualifying an unrelated product on their own.
	minRelatedScore = 20.0

	maxRelatedResults = 4
)

// RecommendationService ranks catalog products by similarity to a
// reference product using weighted attribute matching.
type RecommendationService struct {
	catalog CatalogProvider
	logger  *logrus.Logger
}

func NewRecommendationService(catalog CatalogProvider, logger *logrus.Logger) *RecommendationService {
	return &RecommendationService{catalog: catalog, logger: logger}
}

type scoredCandidate struct {
	product models.CatalogProduct
	score   float64
}

// RelatedProducts returns up to four catalog products most similar to the
// reference product, ranked by score descending. The reference itself is
// never included.
func (s *RecommendationService) RelatedProducts(ctx context.Context, tenantID, productID string) ([]models.CatalogProduct, error) {
	reference, err := s.catalog.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.ListActiveProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	ranked := scoreAndRank(reference, catalog)

	products := make([]models.CatalogProduct, 0, len(ranked))
	for _, cand := range ranked {
		products = append(products, cand.product)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"product_id": productID,
		"candidates": len(catalog),
		"returned":   len(products),
	}).Debug("Computed related products")

	return products, nil
}

// scoreAndRank scores every candidate against the reference, filters out
// weak or unrelated matches and returns the top results. Ties keep the
// catalog order of the input slice.
func scoreAndRank(reference *models.CatalogProduct, catalog []models.CatalogProduct) []scoredCandidate {
	refCategory := normalize(reference.Category)
	refSubCategory := normalize(reference.SubCategory)
	refTags := normalizeTags(reference.TagList())

	eligible := make([]scoredCandidate, 0, len(catalog))
	for i := range catalog {
		candidate := &catalog[i]
		if candidate.ID == reference.ID {
			continue
		}

		score := 0.0
		categoryMatch := refCategory != "" && normalize(candidate.Category) == refCategory
		if categoryMatch {
			score += categoryWeight
			if refSubCategory != "" && normalize(candidate.SubCategory) == refSubCategory {
				score += subCategoryWeight
			}
		}

		candTags := normalizeTags(candidate.TagList())
		shared := tagIntersection(refTags, candTags)
		if len(refTags) > 0 && len(candTags) > 0 {
			denom := len(refTags)
			if len(candTags) > denom {
				denom = len(candTags)
			}
			score += float64(shared) / float64(denom) * tagWeight
		}

		if reference.Price > 0 && candidate.Price > 0 {
			priceRange := reference.Price * 0.5
			diff := candidate.Price - reference.Price
			if diff < 0 {
				diff = -diff
			}
			priceScore := priceWeight - diff/priceRange*priceWeight
			if priceScore > 0 {
				score += priceScore
			}
		}

		if candidate.Rating != nil {
			score += *candidate.Rating / 5.0 * ratingWeight
		}

		if candidate.Popularity != nil {
			popScore := float64(*candidate.Popularity) / 20.0
			if popScore > popularityCap {
				popScore = popularityCap
			}
			score += popScore
		}

		if score < minRelatedScore {
			continue
		}
		if !categoryMatch && shared == 0 {
			continue
		}
		eligible = append(eligible, scoredCandidate{product: *candidate, score: score})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].score > eligible[j].score
	})

	if len(eligible) > maxRelatedResults {
		eligible = eligible[:maxRelatedResults]
	}
	return eligible
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		norm := normalize(tag)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

func tagIntersection(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	shared := 0
	for _, tag := range b {
		if set[tag] {
			shared++
		}
	}
	return shared
}
