package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// CartLine is one requested variant and quantity in a checkout. UnitPrice
// overrides the variant retail price for the line when set; the terminal
// sends it for manual repricing.
type CartLine struct {
	VariantID uuid.UUID        `json:"variantId" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// CheckoutRequest settles (or holds) a cart
type CheckoutRequest struct {
	StoreID       uuid.UUID       `json:"storeId" binding:"required"`
	CashierID     uuid.UUID       `json:"cashierId" binding:"required"`
	CustomerID    *uuid.UUID      `json:"customerId"`
	Lines         []CartLine      `json:"lines" binding:"required,min=1,dive"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=CASH CARD MOBILE"`
	Hold          bool            `json:"hold"`
	Notes         string          `json:"notes"`
}

// OrderLineResponse is the API representation of an order line
type OrderLineResponse struct {
	ID         uuid.UUID       `json:"id"`
	VariantID  uuid.UUID       `json:"variantId"`
	BatchID    *uuid.UUID      `json:"batchId,omitempty"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	StoreID       uuid.UUID           `json:"storeId"`
	CashierID     uuid.UUID           `json:"cashierId"`
	CustomerID    *uuid.UUID          `json:"customerId,omitempty"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	TaxRate       decimal.Decimal     `json:"taxRate"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod string              `json:"paymentMethod"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"paymentStatus"`
	Notes         string              `json:"notes,omitempty"`
	Lines         []OrderLineResponse `json:"lines"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// ListOrdersQuery narrows an order listing
type ListOrdersQuery struct {
	StoreID   *uuid.UUID
	CashierID *uuid.UUID
	Status    *string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(o *sales.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, OrderLineResponse{
			ID:         l.ID,
			VariantID:  l.VariantID,
			BatchID:    l.BatchID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			UnitCost:   l.UnitCost,
			TotalPrice: l.TotalPrice,
		})
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		StoreID:       o.StoreID,
		CashierID:     o.CashierID,
		CustomerID:    o.CustomerID,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		TaxRate:       o.TaxRate,
		Tax:           o.Tax,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Notes:         o.Notes,
		Lines:         lines,
		CreatedAt:     o.CreatedAt,
	}
}
