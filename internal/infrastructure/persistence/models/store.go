package models

import (
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/shopspring/decimal"
)

// StoreModel is the persistence model for stores
type StoreModel struct {
	BaseModel
	Code     string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name     string          `gorm:"type:varchar(200);not null"`
	TaxRate  decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	Currency string          `gorm:"type:varchar(3);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() *store.Store {
	return &store.Store{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		TaxRate:    m.TaxRate,
		Currency:   m.Currency,
	}
}

// FromDomain populates the persistence model from a domain Store
func (m *StoreModel) FromDomain(s *store.Store) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Code = s.Code
	m.Name = s.Name
	m.TaxRate = s.TaxRate
	m.Currency = s.Currency
}
