package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements sales.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order with its lines by order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*sales.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").First(&model, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders matching the filter, with their lines
func (r *GormOrderRepository) FindAll(ctx context.Context, filter sales.OrderFilter) (*shared.Paginated[sales.Order], error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})

	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.CashierID != nil {
		query = query.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var modelList []models.OrderModel
	if err := query.
		Preload("Lines").
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	orders := make([]sales.Order, 0, len(modelList))
	for i := range modelList {
		orders = append(orders, *modelList[i].ToDomain())
	}
	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Create persists the order with its lines. Returns shared.ErrAlreadyExists
// when the order number collides so the caller can regenerate and retry.
func (r *GormOrderRepository) Create(ctx context.Context, order *sales.Order) error {
	var model models.OrderModel
	model.FromDomain(order)
	err := r.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}
