package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ristoranteadam/sara/internal/domain"
	apperrors "github.com/ristoranteadam/sara/internal/errors"
)

// OrderRepository implements domain.OrderRepository using PostgreSQL as the
// durable, append-mostly order log named in spec.md §5/§6.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order record.
func (r *OrderRepository) Create(ctx context.Context, rec *domain.OrderRecord) error {
	ctx, cancel := WithWriteTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO orders (
			id, call_id, fulfilment, items_json, total_cents,
			customer_name, customer_phone, delivery_address, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.CallID,
		rec.Fulfilment,
		rec.ItemsJSON,
		rec.TotalCents,
		rec.CustomerName,
		rec.CustomerPhone,
		rec.DeliveryAddress,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return apperrors.DatabaseError("OrderRepository.Create", err)
	}
	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderRecord, error) {
	ctx, cancel := WithQueryTimeout(ctx)
	defer cancel()

	query := OrderColumns.Select() + ` FROM orders WHERE id = $1`
	query = "SELECT " + query

	return r.scanOrder(ctx, query, id)
}

// List retrieves orders with pagination, newest first.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]*domain.OrderRecord, error) {
	ctx, cancel := WithListQueryTimeout(ctx)
	defer cancel()

	query := "SELECT " + OrderColumns.Select() + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.DatabaseError("OrderRepository.List", err)
	}
	defer rows.Close()

	var out []*domain.OrderRecord
	for rows.Next() {
		rec := &domain.OrderRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.CallID, &rec.Fulfilment, &rec.ItemsJSON, &rec.TotalCents,
			&rec.CustomerName, &rec.CustomerPhone, &rec.DeliveryAddress, &rec.Status,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, apperrors.DatabaseError("OrderRepository.List", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("OrderRepository.List", err)
	}
	return out, nil
}

func (r *OrderRepository) scanOrder(ctx context.Context, query string, args ...interface{}) (*domain.OrderRecord, error) {
	rec := &domain.OrderRecord{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.CallID, &rec.Fulfilment, &rec.ItemsJSON, &rec.TotalCents,
		&rec.CustomerName, &rec.CustomerPhone, &rec.DeliveryAddress, &rec.Status,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.DatabaseError("OrderRepository.scanOrder", err)
	}
	return rec, nil
}
