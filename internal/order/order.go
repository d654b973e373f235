// Package order implements the Order Sink (OSk): the finalisation target
// the DSM writes to once a call reaches crm_confirm:yes or a valid
// address turn. An Order is durably logged via internal/repository and
// mirrored into internal/kv for fast lookup by order_id.
package order

import (
	"time"

	"github.com/google/uuid"
)

// Fulfilment values for Order.Fulfilment.
const (
	FulfilmentPickup   = "pickup"
	FulfilmentDelivery = "delivery"
)

// Line is one ordered item at the price it was confirmed at.
type Line struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Total returns Σ qty·price for a, rounded to cents.
func Total(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += float64(l.Quantity) * l.UnitPrice
	}
	return roundCents(sum)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// Order is spec.md §3's Order entity, the durable record produced by a
// completed call.
type Order struct {
	ID              uuid.UUID `json:"id"`
	CallID          string    `json:"call_id"`
	Fulfilment      string    `json:"fulfilment"`
	Items           []Line    `json:"items"`
	TotalAmount     float64   `json:"total_amount"`
	CustomerPhone   string    `json:"customer_phone"`
	Street          string    `json:"street,omitempty"`
	HouseNumber     string    `json:"house_number,omitempty"`
	Postcode        string    `json:"postcode,omitempty"`
	DeliveryFee     float64   `json:"delivery_fee,omitempty"`
	ETAMinutes      int       `json:"eta_minutes"`
	Payment         string    `json:"payment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// New builds an Order from a confirmed CallSession basket.
func New(callID string, lines []Line, fulfilment string) *Order {
	return &Order{
		ID:          uuid.New(),
		CallID:      callID,
		Fulfilment:  fulfilment,
		Items:       lines,
		TotalAmount: Total(lines),
		CreatedAt:   time.Now().UTC(),
	}
}
