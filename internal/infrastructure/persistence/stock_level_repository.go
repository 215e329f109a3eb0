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

// GormStockLevelRepository implements inventory.StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByPair finds the stock level for a (variant, store) pair
func (r *GormStockLevelRepository) FindByPair(ctx context.Context, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	return r.findPair(ctx, r.db, storeID, variantID)
}

// FindByPairForUpdate locks the stock level row FOR UPDATE within the
// current transaction, serializing concurrent settlements for the pair.
func (r *GormStockLevelRepository) FindByPairForUpdate(ctx context.Context, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	return r.findPair(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), storeID, variantID)
}

func (r *GormStockLevelRepository) findPair(ctx context.Context, db *gorm.DB, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	var model models.StockLevelModel
	if err := db.WithContext(ctx).
		First(&model, "store_id = ? AND variant_id = ?", storeID, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreate returns the stock level for the pair, creating it lazily on
// first receipt. The insert tolerates a concurrent creator and re-reads.
func (r *GormStockLevelRepository) GetOrCreate(ctx context.Context, storeID, variantID uuid.UUID, defaultMinStock int64) (*inventory.StockLevel, error) {
	level, err := r.FindByPairForUpdate(ctx, storeID, variantID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	created, err := inventory.NewStockLevel(variantID, storeID, defaultMinStock)
	if err != nil {
		return nil, err
	}
	var model models.StockLevelModel
	model.FromDomain(created)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error; err != nil {
		return nil, err
	}
	return r.FindByPairForUpdate(ctx, storeID, variantID)
}

// FindByStore returns the stock levels of a store with pagination
func (r *GormStockLevelRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockLevelModel{}).
		Where("store_id = ?", storeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, StockLevelSortFields, "updated_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var modelList []models.StockLevelModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}
	return toStockLevels(modelList), total, nil
}

// FindBelowMinimum returns the stock levels at or below their alert
// threshold. Rows with a zero threshold never alert.
func (r *GormStockLevelRepository) FindBelowMinimum(ctx context.Context, storeID uuid.UUID) ([]inventory.StockLevel, error) {
	var modelList []models.StockLevelModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND min_stock > 0 AND quantity <= min_stock", storeID).
		Order("quantity ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toStockLevels(modelList), nil
}

// Save updates a stock level row (or inserts a fresh one)
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	var model models.StockLevelModel
	model.FromDomain(level)
	return r.db.WithContext(ctx).Save(&model).Error
}

// RecomputeQuantity sums remaining batch quantities for the pair. Used to
// verify the denormalized counter.
func (r *GormStockLevelRepository) RecomputeQuantity(ctx context.Context, storeID, variantID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Select("COALESCE(SUM(remaining_qty), 0)").
		Where("store_id = ? AND variant_id = ?", storeID, variantID).
		Scan(&sum).Error
	return sum, err
}

func toStockLevels(modelList []models.StockLevelModel) []inventory.StockLevel {
	levels := make([]inventory.StockLevel, 0, len(modelList))
	for i := range modelList {
		levels = append(levels, *modelList[i].ToDomain())
	}
	return levels
}
