package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Form is the customer contact and address form filled in at checkout.
type Form struct {
	CustomerName string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	LocationURL  string `json:"location_url"`
	Notes        string `json:"notes"`
}

// SubmittedOrder is built once per successful submission and handed to order sinks.
type SubmittedOrder struct {
	ID           uuid.UUID       `json:"order_id"`
	SessionID    string          `json:"session_id"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	LocationURL  string          `json:"location_url"`
	Notes        string          `json:"notes,omitempty"`
	Lines        []CartLine      `json:"lines"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Message      string          `json:"message"`
	HandoffURL   string          `json:"handoff_url"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}
