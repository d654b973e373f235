package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for durable order persistence.
type OrderRepository interface {
	// Create inserts a new order record.
	Create(ctx context.Context, rec *OrderRecord) error

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*OrderRecord, error)

	// List retrieves orders with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]*OrderRecord, error)
}

// OrderRecord is the durable-storage shape of an order, scanned straight
// from the orders table.
type OrderRecord struct {
	ID              uuid.UUID
	CallID          string
	Fulfilment      string
	ItemsJSON       []byte
	TotalCents      int
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
