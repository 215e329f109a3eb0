package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByID finds a variant by its ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindBySKU finds a variant by its SKU
func (r *GormVariantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error) {
	return r.findOne(ctx, "sku = ?", sku)
}

// FindByBarcode finds a variant by its barcode
func (r *GormVariantRepository) FindByBarcode(ctx context.Context, barcode string) (*catalog.Variant, error) {
	return r.findOne(ctx, "barcode = ?", barcode)
}

func (r *GormVariantRepository) findOne(ctx context.Context, cond string, arg any) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).First(&model, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds all variants whose IDs are in the given set
func (r *GormVariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var modelList []models.VariantModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toVariants(modelList), nil
}

// FindByProduct finds all variants of a product
func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	var modelList []models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sku ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toVariants(modelList), nil
}

// Save creates or updates a variant
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.Variant) error {
	var model models.VariantModel
	model.FromDomain(variant)
	err := r.db.WithContext(ctx).Save(&model).Error
	if isUniqueViolation(err) {
		return shared.NewDomainError("ALREADY_EXISTS", "A variant with this SKU or barcode already exists")
	}
	return err
}

// Delete removes a variant. Deletion is refused while inventory batches or
// order lines reference the variant.
func (r *GormVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var batchCount int64
	if err := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Where("variant_id = ?", id).Count(&batchCount).Error; err != nil {
		return err
	}
	if batchCount > 0 {
		return shared.NewDomainError("CONFLICT", "Cannot delete a variant with inventory batches")
	}

	var lineCount int64
	if err := r.db.WithContext(ctx).Model(&models.OrderLineModel{}).
		Where("variant_id = ?", id).Count(&lineCount).Error; err != nil {
		return err
	}
	if lineCount > 0 {
		return shared.NewDomainError("CONFLICT", "Cannot delete a variant referenced by order lines")
	}

	result := r.db.WithContext(ctx).Delete(&models.VariantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toVariants(modelList []models.VariantModel) []catalog.Variant {
	variants := make([]catalog.Variant, 0, len(modelList))
	for i := range modelList {
		variants = append(variants, *modelList[i].ToDomain())
	}
	return variants
}
