package http

import (
	"time"

	"github.com/makahco2025-svg/test3/internal/checkout"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/makahco2025-svg/test3/internal/notification"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Image         string  `json:"image"`
	Category      string  `json:"category"`
	Price         string  `json:"price"`
	DiscountPrice *string `json:"discount_price,omitempty"`
	UnitPrice     string  `json:"unit_price"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type CartLineResponse struct {
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Total    string          `json:"total"`
}

type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice string             `json:"total_price"`
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type NotificationsResponse struct {
	Notifications []notification.Notification `json:"notifications"`
}

type FormResponse struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	LocationURL string `json:"location_url"`
	Notes       string `json:"notes"`
}

type CheckoutStateResponse struct {
	Open     bool                    `json:"open"`
	Form     FormResponse            `json:"form"`
	Location checkout.LocationStatus `json:"location"`
}

// LocationRequestDTO carries the position the client's device reported.
// Error "unsupported" means the device has no geolocation; any other
// non-empty error is a failed lookup.
type LocationRequestDTO struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

const locationUnsupported = "unsupported"

type OrderResponse struct {
	OrderID     string             `json:"order_id"`
	Message     string             `json:"message"`
	HandoffURL  string             `json:"handoff_url"`
	Lines       []CartLineResponse `json:"lines"`
	TotalItems  int                `json:"total_items"`
	TotalPrice  string             `json:"total_price"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

type OrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type LoginRequestDTO struct {
	Password string `json:"password"`
}

type ProductRequestDTO struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
}

func (d ProductRequestDTO) toProduct(id int64) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          d.Name,
		Description:   d.Description,
		Image:         d.Image,
		Category:      d.Category,
		Price:         d.Price,
		DiscountPrice: d.DiscountPrice,
	}
}

func toProductResponse(p domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		UnitPrice:   p.UnitPrice().StringFixed(2),
	}
	if p.DiscountPrice != nil {
		d := p.DiscountPrice.StringFixed(2)
		resp.DiscountPrice = &d
	}
	return resp
}

func toProductsResponse(products []domain.Product) ProductsResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return ProductsResponse{Products: out}
}

func toLinesResponse(lines []domain.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			Product:  toProductResponse(l.Product),
			Quantity: l.Quantity,
			Total:    l.Total().StringFixed(2),
		}
	}
	return out
}

func toCartResponse(lines []domain.CartLine) CartResponse {
	return CartResponse{
		Lines:      toLinesResponse(lines),
		TotalItems: domain.TotalItems(lines),
		TotalPrice: domain.TotalPrice(lines).StringFixed(2),
	}
}

func toCheckoutStateResponse(c *checkout.Composer) CheckoutStateResponse {
	f := c.Form()
	return CheckoutStateResponse{
		Open: c.IsOpen(),
		Form: FormResponse{
			Name:        f.CustomerName,
			Phone:       f.Phone,
			Address:     f.Address,
			LocationURL: f.LocationURL,
			Notes:       f.Notes,
		},
		Location: c.Location(),
	}
}

func toOrderResponse(o domain.SubmittedOrder) OrderResponse {
	return OrderResponse{
		OrderID:     o.ID.String(),
		Message:     o.Message,
		HandoffURL:  o.HandoffURL,
		Lines:       toLinesResponse(o.Lines),
		TotalItems:  domain.TotalItems(o.Lines),
		TotalPrice:  o.TotalPrice.StringFixed(2),
		SubmittedAt: o.SubmittedAt,
	}
}
