package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for operating expenses
type ExpenseModel struct {
	BaseModel
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category    string          `gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpenseDate time.Time       `gorm:"not null;index"`
	Vendor      string          `gorm:"type:varchar(200)"`
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseEntity:  m.BaseModel.ToDomain(),
		StoreID:     m.StoreID,
		Category:    finance.ExpenseCategory(m.Category),
		Amount:      m.Amount,
		ExpenseDate: m.ExpenseDate,
		Vendor:      m.Vendor,
		Notes:       m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.StoreID = e.StoreID
	m.Category = string(e.Category)
	m.Amount = e.Amount
	m.ExpenseDate = e.ExpenseDate
	m.Vendor = e.Vendor
	m.Notes = e.Notes
}
