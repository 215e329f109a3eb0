package inventory

import (
	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
)

// DefaultMinStock is applied when a stock level row is created lazily on
// first receipt for a (variant, store) pair.
const DefaultMinStock int64 = 5

// StockLevel is the denormalized on-hand counter for one (variant, store)
// pair. It is an independently maintained counter: every batch mutator and
// every settlement adjusts it inside the same transaction as the ledger
// change, so Quantity always equals the sum of RemainingQty over the pair's
// batches.
type StockLevel struct {
	shared.BaseEntity
	VariantID uuid.UUID
	StoreID   uuid.UUID
	Quantity  int64
	MinStock  int64
}

// NewStockLevel creates a stock level row for a (variant, store) pair
func NewStockLevel(variantID, storeID uuid.UUID, minStock int64) (*StockLevel, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if minStock < 0 {
		return nil, shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	return &StockLevel{
		BaseEntity: shared.NewBaseEntity(),
		VariantID:  variantID,
		StoreID:    storeID,
		Quantity:   0,
		MinStock:   minStock,
	}, nil
}

// Increase adds received units to the counter
func (s *StockLevel) Increase(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Increase quantity must be positive")
	}
	s.Quantity += qty
	s.Touch()
	return nil
}

// Decrease removes sold or deleted units from the counter
func (s *StockLevel) Decrease(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Decrease quantity must be positive")
	}
	if qty > s.Quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Stock level cannot go negative")
	}
	s.Quantity -= qty
	s.Touch()
	return nil
}

// Adjust applies a signed delta, used when a batch receipt is corrected
func (s *StockLevel) Adjust(delta int64) error {
	if delta == 0 {
		return nil
	}
	if delta > 0 {
		return s.Increase(delta)
	}
	return s.Decrease(-delta)
}

// SetMinStock updates the low-stock alert threshold
func (s *StockLevel) SetMinStock(min int64) error {
	if min < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	s.MinStock = min
	s.Touch()
	return nil
}

// IsBelowMinimum returns true if on-hand quantity is under the threshold
func (s *StockLevel) IsBelowMinimum() bool {
	return s.MinStock > 0 && s.Quantity < s.MinStock
}
