package domain

import "github.com/shopspring/decimal"

// CartLine pairs a product snapshot, taken when it was first added, with a quantity >= 1.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total is the discount-aware unit price times the quantity.
func (l CartLine) Total() decimal.Decimal {
	return l.Product.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalItems sums the quantities of lines.
func TotalItems(lines []CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums the line totals of lines.
func TotalPrice(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total())
	}
	return total
}
