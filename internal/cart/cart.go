package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the shape the cart needs from a catalog entry to build a line
// item. The cart never reaches back into the catalog.
type Product struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	ImageUrl string
}

type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
	ImageUrl  string          `json:"image_url"`
}

// Snapshot is a frozen copy of the cart taken at a point in time. Later
// mutations of the live cart never show through it.
type Snapshot struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// Store aggregates selected products into line items with a running total.
// Items keep the insertion order of their first add. The total is adjusted on
// every mutation and always equals the sum of unitPrice*quantity over the
// current items.
type Store struct {
	mu    sync.Mutex
	items []LineItem
	total decimal.Decimal
}

func NewStore() *Store {
	return &Store{total: decimal.Zero}
}

// Add merges the product into an existing line item or appends a new one with
// quantity 1.
func (s *Store) Add(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ProductID == p.ID {
			s.items[i].Quantity = item.Quantity + 1
			s.total = s.total.Add(item.UnitPrice)
			return
		}
	}
	s.items = append(s.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		ImageUrl:  p.ImageUrl,
	})
	s.total = s.total.Add(p.Price)
}

// Remove decrements the matching line item's quantity, deleting the item once
// it reaches zero. Removing a product that is not in the cart is a no-op.
func (s *Store) Remove(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ProductID != p.ID {
			continue
		}
		s.total = s.total.Sub(item.UnitPrice)
		if item.Quantity > 1 {
			s.items[i].Quantity = item.Quantity - 1
			return
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.total = decimal.Zero
}

// Snapshot returns an immutable copy of the current items and total.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, Total: s.total}
}
