package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/makahco2025-svg/test3/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Filter narrows a catalog listing. Conditions combine with AND.
type Filter struct {
	// Category matches exactly; empty or domain.AllCategories matches all.
	Category string
	// Query is a case-insensitive substring of name or description.
	Query string
	// OffersOnly keeps discounted products.
	OffersOnly bool
}

func (f Filter) Match(p domain.Product) bool {
	if f.Category != "" && f.Category != domain.AllCategories && p.Category != f.Category {
		return false
	}
	if f.OffersOnly && !p.HasDiscount() {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	}
	return true
}

// Key identifies the filter in caches.
func (f Filter) Key() string {
	category := f.Category
	if category == domain.AllCategories {
		category = ""
	}
	return category + "|" + strings.ToLower(strings.TrimSpace(f.Query)) + "|" + strconv.FormatBool(f.OffersOnly)
}

// Repository is the product source. List returns products in catalog order.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	// Create assigns a new id and stores p.
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	// Update replaces every editable field of the product with p.ID.
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// nextID returns the current Unix time in milliseconds, bumped past last so
// ids stay unique when writes land in the same millisecond.
func nextID(now time.Time, last int64) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

// prepare validates p for a write and fills in defaults.
func prepare(p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	if strings.TrimSpace(p.Image) == "" {
		p.Image = domain.DefaultImage
	}
	return clone(p), nil
}

func clone(p domain.Product) domain.Product {
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		p.DiscountPrice = &d
	}
	return p
}
