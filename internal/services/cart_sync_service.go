package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/clients"
)

const (
	// defaultMaxSyncAttempts bounds retries for a single coalesced line
	// before it is dropped with an error log.
	defaultMaxSyncAttempts = 5

	// syncCallTimeout bounds each remote cart call during a flush.
	syncCallTimeout = 10 * time.Second
)

type syncKey struct {
	tenantID   string
	customerID uuid.UUID
	productID  string
	size       string
}

type syncEntry struct {
	quantity int
	attempts int
}

// RemoteCart is the slice of the customer cart API the sync service needs.
type RemoteCart interface {
	UpdateQuantity(ctx context.Context, tenantID string, customerID uuid.UUID, productID, size string, quantity int) error
}

var _ RemoteCart = (*clients.CartClient)(nil)

// CartSyncService queues outbound cart mutations for logged-in shoppers and
// pushes them to the customer cart service in the background. Entries are
// coalesced per (tenant, customer, product, size) so rapid local edits
// collapse to one remote write carrying the latest absolute quantity. The
// local ledger is authoritative; a failed push is retried, never rolled
// back into the session.
type CartSyncService struct {
	remote RemoteCart
	logger *logrus.Logger

	mu      sync.Mutex
	pending map[syncKey]*syncEntry

	wake        chan struct{}
	maxAttempts int
}

func NewCartSyncService(remote RemoteCart, logger *logrus.Logger) *CartSyncService {
	return &CartSyncService{
		remote:      remote,
		logger:      logger,
		pending:     make(map[syncKey]*syncEntry),
		wake:        make(chan struct{}, 1),
		maxAttempts: defaultMaxSyncAttempts,
	}
}

// Enqueue records the latest absolute quantity for a cart line. A newer
// quantity for the same line overwrites the queued one and resets its
// retry budget.
func (s *CartSyncService) Enqueue(tenantID string, customerID uuid.UUID, productID, size string, quantity int) {
	key := syncKey{tenantID: tenantID, customerID: customerID, productID: productID, size: size}

	s.mu.Lock()
	s.pending[key] = &syncEntry{quantity: quantity}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake returns the channel the worker selects on to flush early.
func (s *CartSyncService) Wake() <-chan struct{} {
	return s.wake
}

// PendingCount returns the number of queued lines awaiting sync.
func (s *CartSyncService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush drains the queue, pushing each coalesced line to the remote cart.
// Failed lines are re-enqueued unless a newer quantity arrived during the
// flush or the retry budget is exhausted. Returns pushed and failed counts.
func (s *CartSyncService) Flush(ctx context.Context) (pushed, failed int) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return 0, 0
	}
	batch := s.pending
	s.pending = make(map[syncKey]*syncEntry)
	s.mu.Unlock()

	for key, entry := range batch {
		callCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
		err := s.remote.UpdateQuantity(callCtx, key.tenantID, key.customerID, key.productID, key.size, entry.quantity)
		cancel()

		if err == nil {
			pushed++
			continue
		}
		failed++
		entry.attempts++

		if entry.attempts >= s.maxAttempts {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"tenant_id":   key.tenantID,
				"customer_id": key.customerID,
				"product_id":  key.productID,
				"size":        key.size,
				"attempts":    entry.attempts,
			}).Error("Dropping cart sync entry after repeated failures")
			continue
		}

		s.mu.Lock()
		// A quantity enqueued mid-flush is newer than this one; keep it.
		if _, exists := s.pending[key]; !exists {
			s.pending[key] = entry
		}
		s.mu.Unlock()

		s.logger.WithError(err).WithFields(logrus.Fields{
			"product_id": key.productID,
			"size":       key.size,
			"attempts":   entry.attempts,
		}).Warn("Cart sync push failed, will retry")
	}
	return pushed, failed
}

// DropCustomer discards queued lines for a customer. Used when an order
// placement clears the persisted cart upstream, which makes any queued
// pushes for it moot.
func (s *CartSyncService) DropCustomer(tenantID string, customerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pending {
		if key.tenantID == tenantID && key.customerID == customerID {
			delete(s.pending, key)
		}
	}
}
