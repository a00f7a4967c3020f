package cart

import (
	"fmt"

	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/shopspring/decimal"
)

const addedTitle = "تمت الإضافة إلى السلة"

// Notifier receives transient user-visible confirmations.
type Notifier interface {
	Notify(title, description string)
}

// Store owns the cart of one browsing session. It is not safe for concurrent
// use: callers serialize access through the owning session.
type Store struct {
	lines    []domain.CartLine
	notifier Notifier
}

func NewStore(notifier Notifier) *Store {
	return &Store{notifier: notifier}
}

// AddToCart increments the line for p, appending a new line with quantity 1
// when p is not in the cart yet.
func (s *Store) AddToCart(p domain.Product) {
	if i := s.indexOf(p.ID); i >= 0 {
		next := s.clone()
		next[i].Quantity++
		s.lines = next
	} else {
		s.lines = append(s.clone(), domain.CartLine{Product: p, Quantity: 1})
	}

	if s.notifier != nil {
		s.notifier.Notify(addedTitle, fmt.Sprintf("تمت إضافة \"%s\" إلى سلة التسوق.", p.Name))
	}
}

// UpdateQuantity sets the quantity of an existing line. A quantity <= 0
// removes the line. Products not in the cart are ignored.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(productID)
		return
	}

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	next := s.clone()
	next[i].Quantity = quantity
	s.lines = next
}

func (s *Store) RemoveFromCart(productID int64) {
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	next := make([]domain.CartLine, 0, len(s.lines)-1)
	next = append(next, s.lines[:i]...)
	next = append(next, s.lines[i+1:]...)
	s.lines = next
}

func (s *Store) ClearCart() {
	s.lines = nil
}

// Lines returns a snapshot of the cart in first-add order.
func (s *Store) Lines() []domain.CartLine {
	return s.clone()
}

func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

func (s *Store) TotalItems() int {
	return domain.TotalItems(s.lines)
}

func (s *Store) TotalPrice() decimal.Decimal {
	return domain.TotalPrice(s.lines)
}

func (s *Store) indexOf(productID int64) int {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// clone copies the lines so snapshots handed out earlier never observe later mutations.
func (s *Store) clone() []domain.CartLine {
	if len(s.lines) == 0 {
		return []domain.CartLine{}
	}
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}
