package models

// ComparisonLimit is the maximum number of products that can be compared
// side by side.
const ComparisonLimit = 4

// ToggleOutcome describes the result of toggling a product in the
// comparison set.
type ToggleOutcome string

const (
	ToggleAdded        ToggleOutcome = "added"
	ToggleRemoved      ToggleOutcome = "removed"
	ToggleLimitReached ToggleOutcome = "limit_reached"
)

// CompareItem is the product snapshot kept for comparison rendering.
type CompareItem struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Image     string   `json:"image,omitempty"`
	Rating    float64  `json:"rating,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ComparisonSet is an ordered, deduplicated selection of up to
// ComparisonLimit product snapshots. Toggling a present product removes it;
// toggling an absent one appends it unless the set is full, in which case
// the set is left unchanged.
type ComparisonSet struct {
	items []CompareItem
}

// Toggle adds or removes the given product snapshot.
func (s *ComparisonSet) Toggle(item CompareItem) ToggleOutcome {
	for i, existing := range s.items {
		if existing.ProductID == item.ProductID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return ToggleRemoved
		}
	}
	if len(s.items) >= ComparisonLimit {
		return ToggleLimitReached
	}
	s.items = append(s.items, item)
	return ToggleAdded
}

// Remove drops the product if present; no-op otherwise.
func (s *ComparisonSet) Remove(productID string) bool {
	for i, existing := range s.items {
		if existing.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the product is currently selected.
func (s *ComparisonSet) Contains(productID string) bool {
	for _, existing := range s.items {
		if existing.ProductID == productID {
			return true
		}
	}
	return false
}

// Clear empties the set.
func (s *ComparisonSet) Clear() {
	s.items = nil
}

// Size returns the number of selected products.
func (s *ComparisonSet) Size() int {
	return len(s.items)
}

// Items returns a copy of the selection in insertion order.
func (s *ComparisonSet) Items() []CompareItem {
	out := make([]CompareItem, len(s.items))
	copy(out, s.items)
	return out
}

// ToggleCompareRequest represents a request to toggle a product in the
// comparison set
type ToggleCompareRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// ComparisonView is the rendered comparison selection
type ComparisonView struct {
	Items   []CompareItem `json:"items"`
	Size    int           `json:"size"`
	Limit   int           `json:"limit"`
	Outcome ToggleOutcome `json:"outcome,omitempty"`
}

// ComparisonResponse wraps a comparison view
type ComparisonResponse struct {
	Success bool            `json:"success"`
	Data    *ComparisonView `json:"data"`
	Message *string         `json:"message,omitempty"`
}
