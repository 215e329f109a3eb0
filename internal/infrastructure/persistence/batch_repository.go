package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a batch by its ID and locks the row FOR UPDATE.
// Callers run inside a transaction; a settlement drawing from the batch
// blocks until the correction commits.
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenForAllocation returns the batches with stock remaining for the
// pair, oldest first with arrival_seq as the tie-break. The rows are locked
// FOR UPDATE; callers run inside a settlement transaction.
func (r *GormBatchRepository) FindOpenForAllocation(ctx context.Context, storeID, variantID uuid.UUID) ([]inventory.Batch, error) {
	var modelList []models.BatchModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND variant_id = ? AND remaining_qty > 0", storeID, variantID).
		Order("received_at ASC, arrival_seq ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toBatches(modelList), nil
}

// FindByVariant returns the batches of a variant at a store
func (r *GormBatchRepository) FindByVariant(ctx context.Context, storeID, variantID uuid.UUID, filter shared.Filter) ([]inventory.Batch, error) {
	var modelList []models.BatchModel
	orderBy := ValidateSortField(filter.OrderBy, BatchSortFields, "received_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query := r.db.WithContext(ctx).
		Where("store_id = ? AND variant_id = ?", storeID, variantID).
		Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toBatches(modelList), nil
}

// Create persists a new batch. arrival_seq is assigned by the database and
// read back into the domain entity.
func (r *GormBatchRepository) Create(ctx context.Context, batch *inventory.Batch) error {
	var model models.BatchModel
	model.FromDomain(batch)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	// Create skips read-only fields; fetch the assigned sequence.
	if err := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Select("arrival_seq").
		Where("id = ?", model.ID).
		Scan(&model.ArrivalSeq).Error; err != nil {
		return err
	}
	batch.ArrivalSeq = model.ArrivalSeq
	return nil
}

// Save updates an existing batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	var model models.BatchModel
	model.FromDomain(batch)
	result := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"quantity":         model.Quantity,
			"remaining_qty":    model.RemainingQty,
			"unit_cost":        model.UnitCost,
			"vendor":           model.Vendor,
			"manufacture_date": model.ManufactureDate,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a batch
func (r *GormBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BatchModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UsedQuantity sums the order-line quantities drawn from the batch
func (r *GormBatchRepository) UsedQuantity(ctx context.Context, batchID uuid.UUID) (int64, error) {
	var used int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderLineModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("batch_id = ?", batchID).
		Scan(&used).Error
	return used, err
}

// IsReferenced reports whether any order line references the batch
func (r *GormBatchRepository) IsReferenced(ctx context.Context, batchID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderLineModel{}).
		Where("batch_id = ?", batchID).
		Count(&count).Error
	return count > 0, err
}

func toBatches(modelList []models.BatchModel) []inventory.Batch {
	batches := make([]inventory.Batch, 0, len(modelList))
	for i := range modelList {
		batches = append(batches, *modelList[i].ToDomain())
	}
	return batches
}
