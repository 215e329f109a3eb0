package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
)

// ExpenseRepository defines persistence operations for expenses
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) (*shared.Paginated[Expense], error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	shared.Filter
	StoreID  *uuid.UUID
	Category *ExpenseCategory
	DateFrom *time.Time
	DateTo   *time.Time
}
