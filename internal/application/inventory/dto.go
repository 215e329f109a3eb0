package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ReceiveBatchRequest records a stock delivery
type ReceiveBatchRequest struct {
	VariantID       uuid.UUID       `json:"variantId" binding:"required"`
	StoreID         uuid.UUID       `json:"storeId" binding:"required"`
	Quantity        int64           `json:"quantity" binding:"required,gt=0"`
	UnitCost        decimal.Decimal `json:"unitCost" binding:"required"`
	Vendor          string          `json:"vendor"`
	ReceivedAt      *time.Time      `json:"receivedAt"`
	ManufactureDate *time.Time      `json:"manufactureDate"`
}

// UpdateBatchRequest corrects a recorded delivery. Nil fields are left
// unchanged.
type UpdateBatchRequest struct {
	Quantity        *int64           `json:"quantity" binding:"omitempty,gt=0"`
	UnitCost        *decimal.Decimal `json:"unitCost"`
	Vendor          *string          `json:"vendor"`
	ManufactureDate *time.Time       `json:"manufactureDate"`
}

// SetMinStockRequest changes the low-stock alert threshold
type SetMinStockRequest struct {
	MinStock int64 `json:"minStock" binding:"gte=0"`
}

// BatchResponse is the API representation of a batch
type BatchResponse struct {
	ID              uuid.UUID       `json:"id"`
	VariantID       uuid.UUID       `json:"variantId"`
	StoreID         uuid.UUID       `json:"storeId"`
	Quantity        int64           `json:"quantity"`
	RemainingQty    int64           `json:"remainingQty"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	Vendor          string          `json:"vendor"`
	ReceivedAt      time.Time       `json:"receivedAt"`
	ManufactureDate *time.Time      `json:"manufactureDate,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// StockLevelResponse is the API representation of a stock level
type StockLevelResponse struct {
	ID           uuid.UUID `json:"id"`
	VariantID    uuid.UUID `json:"variantId"`
	StoreID      uuid.UUID `json:"storeId"`
	Quantity     int64     `json:"quantity"`
	MinStock     int64     `json:"minStock"`
	BelowMinimum bool      `json:"belowMinimum"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToBatchResponse converts a domain batch to its API representation
func ToBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		VariantID:       b.VariantID,
		StoreID:         b.StoreID,
		Quantity:        b.Quantity,
		RemainingQty:    b.RemainingQty,
		UnitCost:        b.UnitCost,
		Vendor:          b.Vendor,
		ReceivedAt:      b.ReceivedAt,
		ManufactureDate: b.ManufactureDate,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToStockLevelResponse converts a domain stock level to its API representation
func ToStockLevelResponse(sl *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ID:           sl.ID,
		VariantID:    sl.VariantID,
		StoreID:      sl.StoreID,
		Quantity:     sl.Quantity,
		MinStock:     sl.MinStock,
		BelowMinimum: sl.IsBelowMinimum(),
		UpdatedAt:    sl.UpdatedAt,
	}
}
