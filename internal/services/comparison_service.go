package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

// ComparisonService manages the per-session side-by-side comparison
// selection. Product attributes are snapshotted from the catalog at toggle
// time so the comparison view renders without further lookups.
type ComparisonService struct {
	sessions *SessionStore
	catalog  CatalogProvider
	logger   *logrus.Logger
}

func NewComparisonService(sessions *SessionStore, catalog CatalogProvider, logger *logrus.Logger) *ComparisonService {
	return &ComparisonService{sessions: sessions, catalog: catalog, logger: logger}
}

// Toggle adds the product to the comparison set, or removes it when
// already selected. Adding beyond the limit leaves the set unchanged and
// reports the rejection in the outcome.
func (s *ComparisonService) Toggle(ctx context.Context, tenantID, sessionID, productID string) (*models.ComparisonView, error) {
	product, err := s.catalog.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.Get(tenantID, sessionID)
	outcome := sess.ToggleCompare(product.CompareSnapshot())

	if outcome == models.ToggleLimitReached {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"product_id": productID,
		}).Debug("Comparison set full, toggle rejected")
	}
	return s.buildView(sess, outcome), nil
}

// Remove drops the product from the comparison set if present.
func (s *ComparisonService) Remove(tenantID, sessionID, productID string) *models.ComparisonView {
	sess := s.sessions.Get(tenantID, sessionID)
	if sess.RemoveCompare(productID) {
		return s.buildView(sess, models.ToggleRemoved)
	}
	return s.buildView(sess, "")
}

// Clear empties the comparison set.
func (s *ComparisonService) Clear(tenantID, sessionID string) *models.ComparisonView {
	sess := s.sessions.Get(tenantID, sessionID)
	sess.ClearCompare()
	return s.buildView(sess, "")
}

// View returns the current comparison selection.
func (s *ComparisonService) View(tenantID, sessionID string) *models.ComparisonView {
	sess := s.sessions.Get(tenantID, sessionID)
	return s.buildView(sess, "")
}

func (s *ComparisonService) buildView(sess *Session, outcome models.ToggleOutcome) *models.ComparisonView {
	items := sess.CompareItems()
	return &models.ComparisonView{
		Items:   items,
		Size:    len(items),
		Limit:   models.ComparisonLimit,
		Outcome: outcome,
	}
}
