package catalog

import (
	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Variant is a sellable unit of a product: one size/concentration with its
// own SKU, optional barcode and retail price. Retail price may change
// independently of the cost history recorded on inventory batches.
type Variant struct {
	shared.BaseEntity
	ProductID   uuid.UUID
	SKU         string
	Barcode     *string
	Label       string // e.g. "50ml EDP"
	RetailPrice decimal.Decimal
}

// NewVariant creates a new variant
func NewVariant(productID uuid.UUID, sku, label string, retailPrice decimal.Decimal) (*Variant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if retailPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Retail price cannot be negative")
	}
	return &Variant{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		SKU:         sku,
		Label:       label,
		RetailPrice: retailPrice,
	}, nil
}

// SetBarcode assigns a barcode to the variant
func (v *Variant) SetBarcode(barcode string) error {
	if barcode == "" {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot be empty")
	}
	v.Barcode = &barcode
	v.Touch()
	return nil
}

// ChangeRetailPrice updates the retail price. Cost history on existing
// batches is unaffected.
func (v *Variant) ChangeRetailPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Retail price cannot be negative")
	}
	v.RetailPrice = price
	v.Touch()
	return nil
}
