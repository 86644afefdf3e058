package models

import (
	"sort"
)

// Ledger is the nested productId -> size -> quantity map that is the single
// source of truth for a shopper's cart. A quantity of zero is equivalent to
// absence: mutations remove zeroed lines, and the derivation methods skip
// non-positive quantities anyway because remotely hydrated payloads can
// still carry them.
type Ledger map[string]map[string]int

// NewLedger creates an empty cart ledger.
func NewLedger() Ledger {
	return make(Ledger)
}

// AddItem increments the quantity for (productID, size), creating nested
// entries as needed. Adding without a size is rejected: size selection is
// enforced upstream by treating the sizeless add as a no-op. Returns the
// resulting quantity for the line and whether the ledger changed.
func (l Ledger) AddItem(productID, size string, delta int) (int, bool) {
	if productID == "" || size == "" || delta <= 0 {
		return 0, false
	}
	sizes, ok := l[productID]
	if !ok {
		sizes = make(map[string]int)
		l[productID] = sizes
	}
	sizes[size] += delta
	return sizes[size], true
}

// SetQuantity sets an absolute quantity for (productID, size). Zero or a
// negative value is the removal signal for that line. Returns whether the
// ledger changed.
func (l Ledger) SetQuantity(productID, size string, quantity int) bool {
	if productID == "" || size == "" {
		return false
	}
	if quantity <= 0 {
		sizes, ok := l[productID]
		if !ok {
			return false
		}
		if _, ok := sizes[size]; !ok {
			return false
		}
		delete(sizes, size)
		if len(sizes) == 0 {
			delete(l, productID)
		}
		return true
	}
	sizes, ok := l[productID]
	if !ok {
		sizes = make(map[string]int)
		l[productID] = sizes
	}
	sizes[size] = quantity
	return true
}

// Quantity returns the current quantity for (productID, size), zero when
// the line is absent.
func (l Ledger) Quantity(productID, size string) int {
	if sizes, ok := l[productID]; ok {
		return sizes[size]
	}
	return 0
}

// Count returns the sum of all positive quantities across products and
// sizes. Non-positive entries are skipped rather than surfaced as errors.
func (l Ledger) Count() int {
	total := 0
	for _, sizes := range l {
		for _, qty := range sizes {
			if qty <= 0 {
				continue
			}
			total += qty
		}
	}
	return total
}

// PriceLookup resolves a product id to its unit price. The second return
// reports whether the product is known to the catalog.
type PriceLookup func(productID string) (float64, bool)

// Amount returns the cart subtotal, resolving unit prices through the
// provided catalog lookup. A line whose product is unknown contributes
// zero; callers are expected to log the miss rather than fail the cart.
func (l Ledger) Amount(price PriceLookup) float64 {
	var total float64
	for productID, sizes := range l {
		unit, ok := price(productID)
		if !ok {
			continue
		}
		for _, qty := range sizes {
			if qty <= 0 {
				continue
			}
			total += unit * float64(qty)
		}
	}
	return total
}

// Clear empties the ledger in place.
func (l Ledger) Clear() {
	for productID := range l {
		delete(l, productID)
	}
}

// IsEmpty reports whether the ledger holds no positive line.
func (l Ledger) IsEmpty() bool {
	return l.Count() == 0
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for productID, sizes := range l {
		cp := make(map[string]int, len(sizes))
		for size, qty := range sizes {
			cp[size] = qty
		}
		out[productID] = cp
	}
	return out
}

// Lines flattens the ledger into CartLine values for rendering and
// checkout, sorted by product id then size so the view is deterministic.
// Zero-quantity lines are omitted.
func (l Ledger) Lines() []CartLine {
	lines := make([]CartLine, 0, len(l))
	for productID, sizes := range l {
		for size, qty := range sizes {
			if qty <= 0 {
				continue
			}
			lines = append(lines, CartLine{ProductID: productID, Size: size, Quantity: qty})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].Size < lines[j].Size
	})
	return lines
}

// CartLine is a single flattened (productId, size, quantity) triple derived
// from the ledger. It is recomputed on demand, never stored.
type CartLine struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// AddCartItemRequest represents a request to add an item to the cart
type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity,omitempty"`
}

// UpdateCartItemRequest represents a request to set an absolute quantity.
// Quantity zero removes the line.
type UpdateCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

// CartView is the rendered state of a session cart
type CartView struct {
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
	Synced    bool       `json:"synced"`
}

// CartResponse wraps a cart view
type CartResponse struct {
	Success bool      `json:"success"`
	Data    *CartView `json:"data"`
	Message *string   `json:"message,omitempty"`
}

// LoginRequest binds a customer identity to the session
type LoginRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
}
