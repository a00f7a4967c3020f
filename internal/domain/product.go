package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// AllCategories selects every product when used as a category filter.
const AllCategories = "الكل"

// DefaultImage is assigned to products created without an image reference.
const DefaultImage = "product-1"

// Categories is the fixed storefront category list, "all" first.
var Categories = []string{
	AllCategories,
	"زيوت الشعر",
	"زيوت البشرة",
	"زيوت عطرية",
	"زيوت عامة",
}

var (
	ErrNameRequired        = errors.New("name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrCategoryRequired    = errors.New("category is required")
	ErrNegativePrice       = errors.New("price must not be negative")
	ErrInvalidDiscount     = errors.New("discount price must be non-negative and lower than price")
)

type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Category      string           `json:"category"`
}

// UnitPrice is the price charged per unit: the discount price when present,
// the list price otherwise.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p Product) HasDiscount() bool {
	return p.DiscountPrice != nil
}

// Validate checks the fields an admin write must carry.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrDescriptionRequired
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrCategoryRequired
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.DiscountPrice != nil && (p.DiscountPrice.IsNegative() || !p.DiscountPrice.LessThan(p.Price)) {
		return ErrInvalidDiscount
	}
	return nil
}
