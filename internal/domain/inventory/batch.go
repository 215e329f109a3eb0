package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Batch is one stock-receipt event. Its unit cost is locked in at receipt
// and is the cost basis for every unit later drawn from it. RemainingQty is
// monotonically non-increasing under sales; it only grows when the receipt
// itself is corrected via Resize.
type Batch struct {
	shared.BaseEntity
	VariantID       uuid.UUID
	StoreID         uuid.UUID
	Quantity        int64 // units received
	RemainingQty    int64 // invariant: 0 <= RemainingQty <= Quantity
	UnitCost        decimal.Decimal
	Vendor          string
	ReceivedAt      time.Time
	ArrivalSeq      int64 // store-scoped monotonic sequence, assigned by the database
	ManufactureDate *time.Time
}

// NewBatch creates a new batch from a stock receipt
func NewBatch(variantID, storeID uuid.UUID, quantity int64, unitCost decimal.Decimal, vendor string, manufactureDate *time.Time) (*Batch, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if unitCost.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost must be positive")
	}
	return &Batch{
		BaseEntity:      shared.NewBaseEntity(),
		VariantID:       variantID,
		StoreID:         storeID,
		Quantity:        quantity,
		RemainingQty:    quantity,
		UnitCost:        unitCost,
		Vendor:          vendor,
		ReceivedAt:      time.Now(),
		ManufactureDate: manufactureDate,
	}, nil
}

// Draw removes qty units from the batch. The caller (order settlement) is
// responsible for only drawing what the allocation plan granted.
func (b *Batch) Draw(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Draw quantity must be positive")
	}
	if qty > b.RemainingQty {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Cannot draw more than the batch remaining quantity")
	}
	b.RemainingQty -= qty
	b.Touch()
	return nil
}

// UsedQty returns how many units have been drawn from this batch
func (b *Batch) UsedQty() int64 {
	return b.Quantity - b.RemainingQty
}

// Resize corrects the received quantity of the batch. usedQty is the number
// of units already committed to order lines; the new quantity cannot shrink
// below it. RemainingQty is recomputed as newQuantity - usedQty.
func (b *Batch) Resize(newQuantity, usedQty int64) error {
	if newQuantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if newQuantity < usedQty {
		return shared.NewDomainError("CONFLICT", "Cannot shrink batch below the quantity already sold")
	}
	b.Quantity = newQuantity
	b.RemainingQty = newQuantity - usedQty
	b.Touch()
	return nil
}

// ChangeUnitCost corrects the recorded wholesale cost of the batch. Order
// lines already drawn keep the cost captured at allocation time.
func (b *Batch) ChangeUnitCost(cost decimal.Decimal) error {
	if cost.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_COST", "Unit cost must be positive")
	}
	b.UnitCost = cost
	b.Touch()
	return nil
}

// HasStock returns true if the batch has undrawn units
func (b *Batch) HasStock() bool {
	return b.RemainingQty > 0
}

// IsUnused returns true if nothing has been drawn from the batch
func (b *Batch) IsUnused() bool {
	return b.RemainingQty == b.Quantity
}

// RemainingValue returns the wholesale value of the undrawn units
func (b *Batch) RemainingValue() decimal.Decimal {
	return b.UnitCost.Mul(decimal.NewFromInt(b.RemainingQty))
}
