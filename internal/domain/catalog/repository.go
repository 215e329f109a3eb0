package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VariantRepository defines persistence operations for variants.
// Variant CRUD is driven by the catalog UI, which sits outside this core;
// the core reads variants for allocation, settlement and reporting.
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Variant, error)
	FindBySKU(ctx context.Context, sku string) (*Variant, error)
	FindByBarcode(ctx context.Context, barcode string) (*Variant, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Variant, error)
	Save(ctx context.Context, variant *Variant) error
	// Delete removes a variant. Implementations must refuse deletion while
	// inventory batches or order lines reference the variant.
	Delete(ctx context.Context, id uuid.UUID) error
}
