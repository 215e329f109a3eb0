package store

import (
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Store represents one retail location. Every core operation takes an
// explicit store ID; there is no ambient default store.
type Store struct {
	shared.BaseEntity
	Code     string
	Name     string
	TaxRate  decimal.Decimal // fraction in [0,1], applied at settlement time
	Currency string
}

// NewStore creates a new store
func NewStore(code, name string, taxRate decimal.Decimal) (*Store, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Store code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be a fraction between 0 and 1")
	}
	return &Store{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		TaxRate:    taxRate,
		Currency:   "USD",
	}, nil
}

// ChangeTaxRate updates the store tax rate. Orders settled before the change
// keep the rate captured at their time of sale.
func (s *Store) ChangeTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be a fraction between 0 and 1")
	}
	s.TaxRate = rate
	s.Touch()
	return nil
}
