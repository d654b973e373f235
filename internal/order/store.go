package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ristoranteadam/sara/internal/domain"
	"github.com/ristoranteadam/sara/internal/kv"
)

// keyTTL is the keyed-record TTL named in spec.md §6's persisted-state
// table: order:<id> keys expire after 7 days.
const keyTTL = 7 * 24 * time.Hour

const indexKey = "orders:index"

func keyFor(id uuid.UUID) string {
	return "order:" + id.String()
}

// Service finalises an Order: it durably logs it via the repository and
// mirrors a keyed copy into internal/kv for fast lookup, updating the
// orders:index hash so recent order IDs are enumerable without a table
// scan.
type Service struct {
	repo domain.OrderRepository
	kv   kv.HashSetter
}

// NewService creates an order Service.
func NewService(repo domain.OrderRepository, store kv.HashSetter) *Service {
	return &Service{repo: repo, kv: store}
}

// Submit writes an Order to the durable log and the keyed store.
func (s *Service) Submit(ctx context.Context, ord *Order) error {
	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return err
	}

	address := ord.Street
	if ord.HouseNumber != "" {
		address += " " + ord.HouseNumber
	}

	rec := &domain.OrderRecord{
		ID:              ord.ID,
		CallID:          ord.CallID,
		Fulfilment:      ord.Fulfilment,
		ItemsJSON:       itemsJSON,
		TotalCents:      int(ord.TotalAmount*100 + 0.5),
		CustomerPhone:   ord.CustomerPhone,
		DeliveryAddress: address,
		Status:          "submitted",
		CreatedAt:       ord.CreatedAt,
		UpdatedAt:       ord.CreatedAt,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}

	if err := s.kv.Set(ctx, keyFor(ord.ID), ord, keyTTL); err == nil {
		s.kv.HSet(ctx, indexKey, ord.ID.String(), ord.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// Get returns the keyed copy of an order, if still within its 7-day TTL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, bool) {
	var ord Order
	found, _ := s.kv.Get(ctx, keyFor(id), &ord)
	if !found {
		return nil, false
	}
	return &ord, true
}
