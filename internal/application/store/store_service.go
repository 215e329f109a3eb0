package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/shopspring/decimal"
)

// CreateStoreRequest registers a new retail location
type CreateStoreRequest struct {
	Code     string          `json:"code" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	Currency string          `json:"currency"`
}

// UpdateStoreRequest revises store attributes. The code is immutable.
type UpdateStoreRequest struct {
	Name    string          `json:"name" binding:"required"`
	TaxRate decimal.Decimal `json:"taxRate"`
}

// StoreResponse is the API representation of a store
type StoreResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ToStoreResponse converts a domain store to its API representation
func ToStoreResponse(s *store.Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		TaxRate:   s.TaxRate,
		Currency:  s.Currency,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// StoreService manages retail locations
type StoreService struct {
	storeRepo store.Repository
}

// NewStoreService creates a new StoreService
func NewStoreService(storeRepo store.Repository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

// Create registers a new store
func (s *StoreService) Create(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	if existing, err := s.storeRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A store with this code already exists")
	}
	st, err := store.NewStore(req.Code, req.Name, req.TaxRate)
	if err != nil {
		return nil, err
	}
	if req.Currency != "" {
		st.Currency = req.Currency
	}
	if err := s.storeRepo.Save(ctx, st); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(st)
	return &resp, nil
}

// Update revises store attributes
func (s *StoreService) Update(ctx context.Context, id uuid.UUID, req UpdateStoreRequest) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	st.Name = req.Name
	if err := st.ChangeTaxRate(req.TaxRate); err != nil {
		return nil, err
	}
	if err := s.storeRepo.Save(ctx, st); err != nil {
		return nil, err
	}
	resp := ToStoreResponse(st)
	return &resp, nil
}

// Get returns one store by ID
func (s *StoreService) Get(ctx context.Context, id uuid.UUID) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStoreResponse(st)
	return &resp, nil
}

// List returns all stores
func (s *StoreService) List(ctx context.Context) ([]StoreResponse, error) {
	stores, err := s.storeRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StoreResponse, 0, len(stores))
	for i := range stores {
		out = append(out, ToStoreResponse(&stores[i]))
	}
	return out, nil
}
