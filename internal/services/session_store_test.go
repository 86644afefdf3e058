package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionStore_GetCreatesOnFirstTouch(t *testing.T) {
	store := NewSessionStore()

	sess := store.Get("tenant-1", "sess-1")
	assert.NotNil(t, sess)
	assert.Equal(t, 1, store.Len())

	again := store.Get("tenant-1", "sess-1")
	assert.Same(t, sess, again)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_SessionsAreTenantScoped(t *testing.T) {
	store := NewSessionStore()

	a := store.Get("tenant-1", "sess-1")
	b := store.Get("tenant-2", "sess-1")

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_FindByCustomer(t *testing.T) {
	store := NewSessionStore()
	customerID := uuid.New()

	bound := store.Get("tenant-1", "sess-1")
	bound.BindCustomer(customerID)
	store.Get("tenant-1", "sess-2")
	other := store.Get("tenant-2", "sess-3")
	other.BindCustomer(customerID)

	found := store.FindByCustomer("tenant-1", customerID)
	assert.Len(t, found, 1)
	assert.Same(t, bound, found[0])

	assert.Empty(t, store.FindByCustomer("tenant-1", uuid.New()))
}

func TestSessionStore_ReapIdle(t *testing.T) {
	store := NewSessionStore()
	idle := store.Get("tenant-1", "idle")
	store.Get("tenant-1", "fresh")

	idle.mu.Lock()
	idle.lastActivity = time.Now().Add(-48 * time.Hour)
	idle.mu.Unlock()

	removed := store.ReapIdle(time.Now().Add(-24 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	// A reaped session id comes back as a fresh, empty session.
	revived := store.Get("tenant-1", "idle")
	assert.NotSame(t, idle, revived)
	assert.True(t, revived.CartSnapshot().IsEmpty())
}

func TestSession_LogoutKeepsCartAndCompare(t *testing.T) {
	store := NewSessionStore()
	sess := store.Get("tenant-1", "sess-1")
	sess.BindCustomer(uuid.New())
	sess.AddItem("P1", "M", 2)

	sess.UnbindCustomer()

	assert.Nil(t, sess.Customer())
	assert.Equal(t, 2, sess.CartSnapshot().Count())
}

func TestSession_CustomerReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	sess := store.Get("tenant-1", "sess-1")
	customerID := uuid.New()
	sess.BindCustomer(customerID)

	got := sess.Customer()
	assert.Equal(t, customerID, *got)
	*got = uuid.New()

	assert.Equal(t, customerID, *sess.Customer())
}
