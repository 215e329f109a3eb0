package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/finance"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) (*shared.Paginated[finance.Expense], error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{})

	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.DateFrom != nil {
		query = query.Where("expense_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("expense_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ExpenseSortFields, "expense_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var modelList []models.ExpenseModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	expenses := make([]finance.Expense, 0, len(modelList))
	for i := range modelList {
		expenses = append(expenses, *modelList[i].ToDomain())
	}
	result := shared.NewPaginated(expenses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(expense)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
