package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
)

// CatalogProvider is the slice of the catalog read model the cart and
// comparison services need.
type CatalogProvider interface {
	GetProduct(ctx context.Context, tenantID, productID string) (*models.CatalogProduct, error)
	ListActiveProducts(ctx context.Context, tenantID string) ([]models.CatalogProduct, error)
}

// RemoteCartFetcher hydrates a customer's persisted cart on login.
type RemoteCartFetcher interface {
	FetchCart(ctx context.Context, tenantID string, customerID uuid.UUID) (models.Ledger, error)
}

var _ RemoteCartFetcher = (*clients.CartClient)(nil)

// CartEventPublisher emits cart lifecycle events.
type CartEventPublisher interface {
	PublishCartItemAdded(tenantID, sessionID, productID, size string, quantity int)
	PublishCartItemUpdated(tenantID, sessionID, productID, size string, quantity int)
	PublishCartCleared(tenantID, sessionID, reason string)
}

// CartService owns the per-session cart workflow: local mutation first,
// then a queued remote sync for logged-in shoppers. Anonymous sessions
// never touch the network.
type CartService struct {
	sessions *SessionStore
	catalog  CatalogProvider
	remote   RemoteCartFetcher
	sync     *CartSyncService
	events   CartEventPublisher
	logger   *logrus.Logger
}

func NewCartService(sessions *SessionStore, catalog CatalogProvider, remote RemoteCartFetcher, sync *CartSyncService, events CartEventPublisher, logger *logrus.Logger) *CartService {
	return &CartService{
		sessions: sessions,
		catalog:  catalog,
		remote:   remote,
		sync:     sync,
		events:   events,
		logger:   logger,
	}
}

// AddItem increments a cart line and returns the refreshed cart view.
func (s *CartService) AddItem(ctx context.Context, tenantID, sessionID string, req *models.AddCartItemRequest) (*models.CartView, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	sess := s.sessions.Get(tenantID, sessionID)
	newQty, changed := sess.AddItem(req.ProductID, req.Size, quantity)
	if !changed {
		return nil, fmt.Errorf("product id and size are required")
	}

	s.enqueueSync(sess, req.ProductID, req.Size, newQty)
	if s.events != nil {
		s.events.PublishCartItemAdded(tenantID, sessionID, req.ProductID, req.Size, quantity)
	}
	return s.buildView(ctx, sess)
}

// SetQuantity sets an absolute cart line quantity. Zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, tenantID, sessionID string, req *models.UpdateCartItemRequest) (*models.CartView, error) {
	if req.Quantity == nil {
		return nil, fmt.Errorf("quantity is required")
	}
	quantity := *req.Quantity
	if quantity < 0 {
		quantity = 0
	}

	if req.ProductID == "" || req.Size == "" {
		return nil, fmt.Errorf("product id and size are required")
	}

	sess := s.sessions.Get(tenantID, sessionID)
	// Removing a line that is already absent is an idempotent no-op, not
	// an error; nothing changed, so nothing is synced or published.
	if changed := sess.SetQuantity(req.ProductID, req.Size, quantity); changed {
		s.enqueueSync(sess, req.ProductID, req.Size, quantity)
		if s.events != nil {
			s.events.PublishCartItemUpdated(tenantID, sessionID, req.ProductID, req.Size, quantity)
		}
	}
	return s.buildView(ctx, sess)
}

// Clear empties the session cart. For a bound session the removals are
// queued for the remote cart too, so a later login does not resurrect
// lines the shopper just cleared.
func (s *CartService) Clear(ctx context.Context, tenantID, sessionID, reason string) (*models.CartView, error) {
	sess := s.sessions.Get(tenantID, sessionID)
	lines := sess.CartSnapshot().Lines()
	sess.ClearCart()

	if customerID := sess.Customer(); customerID != nil {
		for _, line := range lines {
			s.sync.Enqueue(tenantID, *customerID, line.ProductID, line.Size, 0)
		}
	}
	if s.events != nil {
		s.events.PublishCartCleared(tenantID, sessionID, reason)
	}
	return s.buildView(ctx, sess)
}

// View returns the current cart with prices resolved from the catalog.
func (s *CartService) View(ctx context.Context, tenantID, sessionID string) (*models.CartView, error) {
	sess := s.sessions.Get(tenantID, sessionID)
	return s.buildView(ctx, sess)
}

// Login binds a customer to the session and replaces the local cart with
// the customer's persisted cart. The fetched cart wins wholesale; nothing
// from the anonymous cart is merged into it.
func (s *CartService) Login(ctx context.Context, tenantID, sessionID string, customerID uuid.UUID) (*models.CartView, error) {
	sess := s.sessions.Get(tenantID, sessionID)

	ledger, err := s.remote.FetchCart(ctx, tenantID, customerID)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id":   tenantID,
			"customer_id": customerID,
		}).Error("Failed to fetch persisted cart on login")
		return nil, fmt.Errorf("failed to fetch customer cart: %w", err)
	}

	sess.ReplaceCart(ledger)
	sess.BindCustomer(customerID)

	s.logger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"session_id":  sessionID,
		"customer_id": customerID,
		"item_count":  ledger.Count(),
	}).Info("Session bound to customer, cart hydrated")
	return s.buildView(ctx, sess)
}

// Logout unbinds the customer from the session. The local cart is kept so
// the shopper continues browsing with the same items, now anonymous. Queued
// sync entries are flushed first; whatever still fails stays queued under
// the customer key for the worker to retry.
func (s *CartService) Logout(ctx context.Context, tenantID, sessionID string) (*models.CartView, error) {
	sess := s.sessions.Get(tenantID, sessionID)

	if sess.Customer() != nil {
		s.sync.Flush(ctx)
	}
	sess.UnbindCustomer()
	return s.buildView(ctx, sess)
}

// ClearForCustomer empties every live session cart bound to the customer.
// Called by the order subscriber once an order is placed.
func (s *CartService) ClearForCustomer(tenantID string, customerID uuid.UUID) int {
	sessions := s.sessions.FindByCustomer(tenantID, customerID)
	for _, sess := range sessions {
		sess.ClearCart()
		if s.events != nil {
			s.events.PublishCartCleared(tenantID, sess.ID, "order_placed")
		}
	}
	s.sync.DropCustomer(tenantID, customerID)
	return len(sessions)
}

func (s *CartService) enqueueSync(sess *Session, productID, size string, quantity int) {
	customerID := sess.Customer()
	if customerID == nil {
		return
	}
	s.sync.Enqueue(sess.TenantID, *customerID, productID, size, quantity)
}

func (s *CartService) buildView(ctx context.Context, sess *Session) (*models.CartView, error) {
	ledger := sess.CartSnapshot()

	lookup := func(productID string) (float64, bool) {
		product, err := s.catalog.GetProduct(ctx, sess.TenantID, productID)
		if err != nil {
			s.logger.WithField("product_id", productID).Warn("Cart line references unknown product, priced at zero")
			return 0, false
		}
		return product.Price, true
	}

	view := &models.CartView{
		Lines:     ledger.Lines(),
		ItemCount: ledger.Count(),
		Subtotal:  ledger.Amount(lookup),
		Synced:    sess.Customer() != nil,
	}
	return view, nil
}
