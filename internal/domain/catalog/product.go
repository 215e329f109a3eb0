package catalog

import (
	"github.com/scentpos/backend/internal/domain/shared"
)

// Product represents a perfume product line (e.g. one fragrance).
// Sellable units are its Variants.
type Product struct {
	shared.BaseEntity
	Name        string
	Brand       string
	Category    string
	Description string
}

// NewProduct creates a new product
func NewProduct(name, brand, category string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Brand:      brand,
		Category:   category,
	}, nil
}

// Rename changes the product display name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}
