package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies operating expenses for reporting
type ExpenseCategory string

const (
	CategoryRent      ExpenseCategory = "RENT"
	CategorySalary    ExpenseCategory = "SALARY"
	CategoryUtilities ExpenseCategory = "UTILITIES"
	CategoryMarketing ExpenseCategory = "MARKETING"
	CategorySupplies  ExpenseCategory = "SUPPLIES"
	CategoryOther     ExpenseCategory = "OTHER"
)

// IsValid checks if the category is recognized
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case CategoryRent, CategorySalary, CategoryUtilities, CategoryMarketing, CategorySupplies, CategoryOther:
		return true
	}
	return false
}

// Expense is a non-inventory operating cost. Expenses reduce net profit but
// never touch COGS.
type Expense struct {
	shared.BaseEntity
	StoreID     uuid.UUID
	Category    ExpenseCategory
	Amount      decimal.Decimal
	ExpenseDate time.Time
	Vendor      string
	Notes       string
}

// NewExpense creates an expense entry. A zero expenseDate defaults to now.
func NewExpense(storeID uuid.UUID, category ExpenseCategory, amount decimal.Decimal, expenseDate time.Time, vendor, notes string) (*Expense, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}
	return &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		StoreID:     storeID,
		Category:    category,
		Amount:      amount,
		ExpenseDate: expenseDate,
		Vendor:      vendor,
		Notes:       notes,
	}, nil
}

// Update revises a recorded expense
func (e *Expense) Update(category ExpenseCategory, amount decimal.Decimal, expenseDate time.Time, vendor, notes string) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	e.Category = category
	e.Amount = amount
	if !expenseDate.IsZero() {
		e.ExpenseDate = expenseDate
	}
	e.Vendor = vendor
	e.Notes = notes
	e.Touch()
	return nil
}
