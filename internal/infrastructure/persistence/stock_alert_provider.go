package persistence

import (
	"context"

	"github.com/scentpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockAlertProvider counts stock levels at or below their alert
// threshold across all stores. Used by the telemetry collector.
type GormStockAlertProvider struct {
	db *gorm.DB
}

// NewGormStockAlertProvider creates a new GormStockAlertProvider
func NewGormStockAlertProvider(db *gorm.DB) *GormStockAlertProvider {
	return &GormStockAlertProvider{db: db}
}

// LowStockCount returns the number of variants at or below their threshold
func (p *GormStockAlertProvider) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.StockLevelModel{}).
		Where("min_stock > 0 AND quantity <= min_stock").
		Count(&count).Error
	return count, err
}
