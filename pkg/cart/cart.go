// Package cart holds the client-side shopping cart of one session.
//
// A Store is created by the application root and handed to whatever needs
// it (cart screen, checkout). Entries are keyed by a synthetic entry id so a
// line can be addressed before the server has seen it; a product appears in
// at most one entry.
package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog data copied into the cart when it is added.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

// Item is one cart line. Quantity is always at least 1.
type Item struct {
	EntryID   string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// LineTotal is Price × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []Item
	newID func() string
}

type Option func(*Store)

// WithEntryIDs overrides the entry id generator.
func WithEntryIDs(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add merges quantity into the entry for p.ID, or appends a new entry.
// Non-positive quantities are ignored.
func (s *Store) Add(p Product, quantity int) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexByProduct(p.ID); i >= 0 {
		if quantity > 0 {
			s.items[i].Quantity += quantity
		}
		return s.items[i]
	}
	if quantity <= 0 {
		return Item{}
	}

	item := Item{
		EntryID:   s.newID(),
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		Image:     p.Image,
	}
	s.items = append(s.items, item)
	return item
}

// Increase adds one to the entry's quantity. Unknown ids are ignored.
func (s *Store) Increase(entryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexByEntry(entryID); i >= 0 {
		s.items[i].Quantity++
	}
}

// Decrease removes one from the entry's quantity but never goes below 1;
// use Remove to drop the line.
func (s *Store) Decrease(entryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexByEntry(entryID); i >= 0 && s.items[i].Quantity > 1 {
		s.items[i].Quantity--
	}
}

func (s *Store) Remove(entryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexByEntry(entryID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Subtract takes the quantities of snapshot lines out of the cart, removing
// lines that reach zero. Units added after the snapshot stay.
func (s *Store) Subtract(snapshot []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, taken := range snapshot {
		i := s.indexByProduct(taken.ProductID)
		if i < 0 {
			continue
		}
		s.items[i].Quantity -= taken.Quantity
		if s.items[i].Quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
	}
}

// Items returns a snapshot of the cart in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total is recomputed on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Quantity returns how many units of productID are in the cart.
func (s *Store) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexByProduct(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) indexByEntry(entryID string) int {
	for i := range s.items {
		if s.items[i].EntryID == entryID {
			return i
		}
	}
	return -1
}

func (s *Store) indexByProduct(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
