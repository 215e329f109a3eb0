package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for orders
type OrderModel struct {
	BaseModel
	OrderNumber   string           `gorm:"type:varchar(40);not null;uniqueIndex"`
	StoreID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	CashierID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID       `gorm:"type:uuid;index"`
	Subtotal      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Discount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal  `gorm:"type:decimal(6,4);not null"`
	Tax           decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Total         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	PaymentMethod string           `gorm:"type:varchar(10);not null"`
	Status        string           `gorm:"type:varchar(12);not null;index"`
	PaymentStatus string           `gorm:"type:varchar(10);not null"`
	Notes         string           `gorm:"type:text"`
	Lines         []OrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the persistence model for order lines. BatchID is null
// on lines of held orders, which have drawn no stock yet.
type OrderLineModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID    *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain Order with its lines
func (m *OrderModel) ToDomain() *sales.Order {
	lines := make([]sales.OrderLine, 0, len(m.Lines))
	for i := range m.Lines {
		lines = append(lines, m.Lines[i].toDomain())
	}
	return &sales.Order{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrderNumber:   m.OrderNumber,
		StoreID:       m.StoreID,
		CashierID:     m.CashierID,
		CustomerID:    m.CustomerID,
		Subtotal:      m.Subtotal,
		Discount:      m.Discount,
		TaxRate:       m.TaxRate,
		Tax:           m.Tax,
		Total:         m.Total,
		PaymentMethod: sales.PaymentMethod(m.PaymentMethod),
		Status:        sales.OrderStatus(m.Status),
		PaymentStatus: sales.PaymentStatus(m.PaymentStatus),
		Notes:         m.Notes,
		Lines:         lines,
	}
}

func (m *OrderLineModel) toDomain() sales.OrderLine {
	return sales.OrderLine{
		ID:         m.ID,
		OrderID:    m.OrderID,
		VariantID:  m.VariantID,
		BatchID:    m.BatchID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		UnitCost:   m.UnitCost,
		TotalPrice: m.TotalPrice,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *sales.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.OrderNumber = o.OrderNumber
	m.StoreID = o.StoreID
	m.CashierID = o.CashierID
	m.CustomerID = o.CustomerID
	m.Subtotal = o.Subtotal
	m.Discount = o.Discount
	m.TaxRate = o.TaxRate
	m.Tax = o.Tax
	m.Total = o.Total
	m.PaymentMethod = string(o.PaymentMethod)
	m.Status = string(o.Status)
	m.PaymentStatus = string(o.PaymentStatus)
	m.Notes = o.Notes
	m.Lines = make([]OrderLineModel, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		m.Lines = append(m.Lines, OrderLineModel{
			ID:         l.ID,
			OrderID:    l.OrderID,
			VariantID:  l.VariantID,
			BatchID:    l.BatchID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			UnitCost:   l.UnitCost,
			TotalPrice: l.TotalPrice,
			CreatedAt:  l.CreatedAt,
		})
	}
}
