package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/scentpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by its ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a store by its code
func (r *GormStoreRepository) FindByCode(ctx context.Context, code string) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all stores
func (r *GormStoreRepository) FindAll(ctx context.Context) ([]store.Store, error) {
	var modelList []models.StoreModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&modelList).Error; err != nil {
		return nil, err
	}
	stores := make([]store.Store, 0, len(modelList))
	for i := range modelList {
		stores = append(stores, *modelList[i].ToDomain())
	}
	return stores, nil
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	var model models.StoreModel
	model.FromDomain(s)
	err := r.db.WithContext(ctx).Save(&model).Error
	if isUniqueViolation(err) {
		return shared.NewDomainError("ALREADY_EXISTS", "A store with this code already exists")
	}
	return err
}
