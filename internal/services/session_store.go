package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"storefront-service/internal/models"
)

// Session is the owned state object for one shopper: the cart ledger, the
// comparison set and the optional customer binding. All mutation goes
// through its methods; the internal mutex serializes concurrent handlers
// for the same session so mutations apply in dispatch order.
type Session struct {
	ID       string
	TenantID string

	mu           sync.Mutex
	customerID   *uuid.UUID
	cart         models.Ledger
	compare      models.ComparisonSet
	lastActivity time.Time
}

func newSession(tenantID, sessionID string) *Session {
	return &Session{
		ID:           sessionID,
		TenantID:     tenantID,
		cart:         models.NewLedger(),
		lastActivity: time.Now(),
	}
}

func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// AddItem increments a cart line. Returns the resulting quantity and
// whether the ledger changed.
func (s *Session) AddItem(productID, size string, delta int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.AddItem(productID, size, delta)
}

// SetQuantity sets an absolute cart line quantity; zero removes the line.
func (s *Session) SetQuantity(productID, size string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.SetQuantity(productID, size, quantity)
}

// ClearCart empties the ledger, invoked after successful order placement.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cart.Clear()
}

// ReplaceCart swaps the ledger wholesale, used when hydrating from the
// remote cart on login.
func (s *Session) ReplaceCart(ledger models.Ledger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if ledger == nil {
		ledger = models.NewLedger()
	}
	s.cart = ledger
}

// CartSnapshot returns a deep copy of the current ledger.
func (s *Session) CartSnapshot() models.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// BindCustomer attaches a customer identity to the session.
func (s *Session) BindCustomer(customerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.customerID = &customerID
}

// UnbindCustomer detaches the customer identity. The ledger is
// intentionally kept so the shopper does not lose their cart on logout.
func (s *Session) UnbindCustomer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.customerID = nil
}

// Customer returns the bound customer id, nil for anonymous sessions.
func (s *Session) Customer() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customerID == nil {
		return nil
	}
	id := *s.customerID
	return &id
}

// ToggleCompare toggles a product snapshot in the comparison set.
func (s *Session) ToggleCompare(item models.CompareItem) models.ToggleOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.compare.Toggle(item)
}

// RemoveCompare removes a product from the comparison set.
func (s *Session) RemoveCompare(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.compare.Remove(productID)
}

// ClearCompare empties the comparison set.
func (s *Session) ClearCompare() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.compare.Clear()
}

// CompareItems returns the current comparison selection.
func (s *Session) CompareItems() []models.CompareItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compare.Items()
}

// LastActivity returns the last mutation/read time for idle expiry.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SessionStore owns all live shopper sessions for this instance. Sessions
// are created on first touch and reaped after idling past the TTL.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

func sessionKey(tenantID, sessionID string) string {
	return tenantID + ":" + sessionID
}

// Get returns the session for (tenant, sessionID), creating it when absent.
func (st *SessionStore) Get(tenantID, sessionID string) *Session {
	key := sessionKey(tenantID, sessionID)

	st.mu.RLock()
	sess, ok := st.sessions[key]
	st.mu.RUnlock()
	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[key]; ok {
		return sess
	}
	sess = newSession(tenantID, sessionID)
	st.sessions[key] = sess
	return sess
}

// FindByCustomer returns all sessions bound to the given customer. Used by
// the order subscriber to clear carts after order placement.
func (st *SessionStore) FindByCustomer(tenantID string, customerID uuid.UUID) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var out []*Session
	for _, sess := range st.sessions {
		if sess.TenantID != tenantID {
			continue
		}
		if bound := sess.Customer(); bound != nil && *bound == customerID {
			out = append(out, sess)
		}
	}
	return out
}

// ReapIdle deletes sessions whose last activity is before the cutoff and
// returns how many were removed.
func (st *SessionStore) ReapIdle(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for key, sess := range st.sessions {
		if sess.LastActivity().Before(cutoff) {
			delete(st.sessions, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
