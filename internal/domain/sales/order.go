package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusOnHold    OrderStatus = "ON_HOLD"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusCompleted || s == OrderStatusOnHold
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodMobile PaymentMethod = "MOBILE"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile:
		return true
	}
	return false
}

// OrderLine is one variant drawn from exactly one batch within an order.
// A cart line spanning multiple batches becomes multiple order lines, one
// per batch touched. UnitCost is copied from the batch at allocation time,
// which keeps historical COGS stable even if the batch cost is edited later.
// Held orders carry lines with no batch and no cost; allocation happens when
// the hold is settled.
type OrderLine struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	VariantID  uuid.UUID
	BatchID    *uuid.UUID
	Quantity   int64
	UnitPrice  decimal.Decimal
	UnitCost   decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// NewOrderLine creates an order line backed by a batch allocation
func NewOrderLine(orderID, variantID, batchID uuid.UUID, quantity int64, unitPrice, unitCost decimal.Decimal) (*OrderLine, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	line, err := newLine(orderID, variantID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	line.BatchID = &batchID
	line.UnitCost = unitCost
	return line, nil
}

// NewPendingOrderLine creates a line for a held order. No batch is drawn
// and no cost is captured until settlement.
func NewPendingOrderLine(orderID, variantID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*OrderLine, error) {
	return newLine(orderID, variantID, quantity, unitPrice)
}

func newLine(orderID, variantID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*OrderLine, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &OrderLine{
		ID:         uuid.New(),
		OrderID:    orderID,
		VariantID:  variantID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		UnitCost:   decimal.Zero,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:  time.Now(),
	}, nil
}

// LineCost returns the COGS contribution of the line
func (l *OrderLine) LineCost() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.Quantity))
}

// Order is one completed (or held) sale. It is immutable after creation;
// there are no edit operations.
type Order struct {
	shared.BaseEntity
	OrderNumber   string
	StoreID       uuid.UUID
	CashierID     uuid.UUID
	CustomerID    *uuid.UUID
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxRate       decimal.Decimal // rate in effect at the moment of sale
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Notes         string
	Lines         []OrderLine
}

// Totals holds the monetary breakdown of an order
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives subtotal, tax and total for a cart. Tax applies to
// the discounted subtotal: tax = (subtotal - discount) * taxRate, and
// total = subtotal - discount + tax.
func ComputeTotals(lineAmounts []decimal.Decimal, discount, taxRate decimal.Decimal) (Totals, error) {
	if discount.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	subtotal := decimal.Zero
	for _, amt := range lineAmounts {
		subtotal = subtotal.Add(amt)
	}
	if discount.GreaterThan(subtotal) {
		return Totals{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}, nil
}

// NewOrder creates an order shell; lines are attached by settlement after
// allocation.
func NewOrder(orderNumber string, storeID, cashierID uuid.UUID, totals Totals, taxRate decimal.Decimal, method PaymentMethod, status OrderStatus) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATE", "Unsupported order status")
	}

	paymentStatus := PaymentStatusPaid
	if status == OrderStatusOnHold {
		paymentStatus = PaymentStatusPending
	}

	return &Order{
		BaseEntity:    shared.NewBaseEntity(),
		OrderNumber:   orderNumber,
		StoreID:       storeID,
		CashierID:     cashierID,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		TaxRate:       taxRate,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: method,
		Status:        status,
		PaymentStatus: paymentStatus,
		Lines:         make([]OrderLine, 0),
	}, nil
}

// AttachLine appends an order line produced from one allocation
func (o *Order) AttachLine(variantID, batchID uuid.UUID, quantity int64, unitPrice, unitCost decimal.Decimal) error {
	line, err := NewOrderLine(o.ID, variantID, batchID, quantity, unitPrice, unitCost)
	if err != nil {
		return err
	}
	o.Lines = append(o.Lines, *line)
	return nil
}

// AttachPendingLine appends an unallocated line to a held order
func (o *Order) AttachPendingLine(variantID uuid.UUID, quantity int64, unitPrice decimal.Decimal) error {
	if !o.IsHeld() {
		return shared.NewDomainError("INVALID_STATE", "Unallocated lines are only allowed on held orders")
	}
	line, err := NewPendingOrderLine(o.ID, variantID, quantity, unitPrice)
	if err != nil {
		return err
	}
	o.Lines = append(o.Lines, *line)
	return nil
}

// SetCustomer links an optional customer reference
func (o *Order) SetCustomer(customerID uuid.UUID) {
	if customerID != uuid.Nil {
		o.CustomerID = &customerID
	}
}

// IsHeld returns true for on-hold orders, which have drawn no stock
func (o *Order) IsHeld() bool {
	return o.Status == OrderStatusOnHold
}

// COGS returns the total cost of goods sold for the order
func (o *Order) COGS() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].LineCost())
	}
	return total
}

// TotalUnits returns the number of units across all lines
func (o *Order) TotalUnits() int64 {
	var total int64
	for i := range o.Lines {
		total += o.Lines[i].Quantity
	}
	return total
}
