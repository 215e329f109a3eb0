package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateProductRequest registers a new product line
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateProductRequest revises product attributes
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// CreateVariantRequest adds a sellable unit to a product
type CreateVariantRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	Label       string          `json:"label"`
	Barcode     *string         `json:"barcode"`
	RetailPrice decimal.Decimal `json:"retailPrice" binding:"required"`
}

// UpdateVariantRequest revises a variant. Nil fields are left unchanged.
type UpdateVariantRequest struct {
	Label       *string          `json:"label"`
	Barcode     *string          `json:"barcode"`
	RetailPrice *decimal.Decimal `json:"retailPrice"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VariantResponse is the API representation of a variant
type VariantResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	SKU         string          `json:"sku"`
	Barcode     *string         `json:"barcode,omitempty"`
	Label       string          `json:"label,omitempty"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ToProductResponse converts a domain product to its API representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToVariantResponse converts a domain variant to its API representation
func ToVariantResponse(v *catalog.Variant) VariantResponse {
	return VariantResponse{
		ID:          v.ID,
		ProductID:   v.ProductID,
		SKU:         v.SKU,
		Barcode:     v.Barcode,
		Label:       v.Label,
		RetailPrice: v.RetailPrice,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// CatalogService manages the product and variant catalog
type CatalogService struct {
	productRepo catalog.ProductRepository
	variantRepo catalog.VariantRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(productRepo catalog.ProductRepository, variantRepo catalog.VariantRepository) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

// CreateProduct registers a new product line
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Brand, req.Category)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct revises product attributes
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Rename(req.Name); err != nil {
		return nil, err
	}
	product.Brand = req.Brand
	product.Category = req.Category
	product.Description = req.Description
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns one product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts returns products matching the filter
func (s *CatalogService) ListProducts(ctx context.Context, filter shared.Filter) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out, nil
}

// DeleteProduct removes a product. The repository refuses deletion while
// variants still reference the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// CreateVariant adds a sellable unit to a product
func (s *CatalogService) CreateVariant(ctx context.Context, productID uuid.UUID, req CreateVariantRequest) (*VariantResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if existing, err := s.variantRepo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_SKU", "A variant with this SKU already exists")
	}
	variant, err := catalog.NewVariant(productID, req.SKU, req.Label, req.RetailPrice)
	if err != nil {
		return nil, err
	}
	if req.Barcode != nil {
		if err := variant.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}
	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, err
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// UpdateVariant revises a variant
func (s *CatalogService) UpdateVariant(ctx context.Context, id uuid.UUID, req UpdateVariantRequest) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Label != nil {
		variant.Label = *req.Label
		variant.Touch()
	}
	if req.Barcode != nil {
		if err := variant.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.RetailPrice != nil {
		if err := variant.ChangeRetailPrice(*req.RetailPrice); err != nil {
			return nil, err
		}
	}
	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, err
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// GetVariant returns one variant by ID
func (s *CatalogService) GetVariant(ctx context.Context, id uuid.UUID) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// LookupVariant resolves a variant by SKU or barcode, the two identifiers a
// scanner or cashier types at the register.
func (s *CatalogService) LookupVariant(ctx context.Context, code string) (*VariantResponse, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lookup code cannot be empty")
	}
	variant, err := s.variantRepo.FindBySKU(ctx, code)
	if err != nil {
		variant, err = s.variantRepo.FindByBarcode(ctx, code)
		if err != nil {
			return nil, err
		}
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// ListVariants returns all variants of a product
func (s *CatalogService) ListVariants(ctx context.Context, productID uuid.UUID) ([]VariantResponse, error) {
	variants, err := s.variantRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]VariantResponse, 0, len(variants))
	for i := range variants {
		out = append(out, ToVariantResponse(&variants[i]))
	}
	return out, nil
}

// DeleteVariant removes a variant. The repository refuses deletion while
// batches or order lines reference the variant.
func (s *CatalogService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return s.variantRepo.Delete(ctx, id)
}
