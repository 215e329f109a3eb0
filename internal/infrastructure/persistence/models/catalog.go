package models

import (
	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for products
type ProductModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;index"`
	Brand       string `gorm:"type:varchar(100);not null;index"`
	Category    string `gorm:"type:varchar(100);not null;index"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:        m.Name,
		Brand:       m.Brand,
		Category:    m.Category,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Brand = p.Brand
	m.Category = p.Category
	m.Description = p.Description
}

// VariantModel is the persistence model for product variants
type VariantModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU         string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Barcode     *string         `gorm:"type:varchar(64);uniqueIndex"`
	Label       string          `gorm:"type:varchar(100);not null"`
	RetailPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		BaseEntity:  m.BaseModel.ToDomain(),
		ProductID:   m.ProductID,
		SKU:         m.SKU,
		Barcode:     m.Barcode,
		Label:       m.Label,
		RetailPrice: m.RetailPrice,
	}
}

// FromDomain populates the persistence model from a domain Variant
func (m *VariantModel) FromDomain(v *catalog.Variant) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ProductID = v.ProductID
	m.SKU = v.SKU
	m.Barcode = v.Barcode
	m.Label = v.Label
	m.RetailPrice = v.RetailPrice
}
