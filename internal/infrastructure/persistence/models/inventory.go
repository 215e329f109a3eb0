package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// BatchModel is the persistence model for stock batches. ArrivalSeq is a
// database-assigned bigserial; GORM never writes it.
type BatchModel struct {
	BaseModel
	VariantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_pair"`
	StoreID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_pair"`
	Quantity        int64           `gorm:"not null"`
	RemainingQty    int64           `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Vendor          string          `gorm:"type:varchar(200)"`
	ReceivedAt      time.Time       `gorm:"not null;index"`
	ArrivalSeq      int64           `gorm:"->;not null"`
	ManufactureDate *time.Time
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch
func (m *BatchModel) ToDomain() *inventory.Batch {
	return &inventory.Batch{
		BaseEntity:      m.BaseModel.ToDomain(),
		VariantID:       m.VariantID,
		StoreID:         m.StoreID,
		Quantity:        m.Quantity,
		RemainingQty:    m.RemainingQty,
		UnitCost:        m.UnitCost,
		Vendor:          m.Vendor,
		ReceivedAt:      m.ReceivedAt,
		ArrivalSeq:      m.ArrivalSeq,
		ManufactureDate: m.ManufactureDate,
	}
}

// FromDomain populates the persistence model from a domain Batch
func (m *BatchModel) FromDomain(b *inventory.Batch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.VariantID = b.VariantID
	m.StoreID = b.StoreID
	m.Quantity = b.Quantity
	m.RemainingQty = b.RemainingQty
	m.UnitCost = b.UnitCost
	m.Vendor = b.Vendor
	m.ReceivedAt = b.ReceivedAt
	m.ArrivalSeq = b.ArrivalSeq
	m.ManufactureDate = b.ManufactureDate
}

// StockLevelModel is the persistence model for the denormalized stock
// counters. One row per (variant, store) pair.
type StockLevelModel struct {
	BaseModel
	VariantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_pair"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_pair"`
	Quantity  int64     `gorm:"not null;default:0"`
	MinStock  int64     `gorm:"not null;default:5"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// ToDomain converts the persistence model to a domain StockLevel
func (m *StockLevelModel) ToDomain() *inventory.StockLevel {
	return &inventory.StockLevel{
		BaseEntity: m.BaseModel.ToDomain(),
		VariantID:  m.VariantID,
		StoreID:    m.StoreID,
		Quantity:   m.Quantity,
		MinStock:   m.MinStock,
	}
}

// FromDomain populates the persistence model from a domain StockLevel
func (m *StockLevelModel) FromDomain(sl *inventory.StockLevel) {
	m.FromDomainBaseEntity(sl.BaseEntity)
	m.VariantID = sl.VariantID
	m.StoreID = sl.StoreID
	m.Quantity = sl.Quantity
	m.MinStock = sl.MinStock
}
