package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) (*shared.Paginated[Order], error)
	// Create persists the order with its lines. Returns
	// shared.ErrAlreadyExists when the order number collides.
	Create(ctx context.Context, order *Order) error
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	StoreID   *uuid.UUID
	Status    *OrderStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	CashierID *uuid.UUID
}
