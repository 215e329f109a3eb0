package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/finance"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest records an operating expense
type CreateExpenseRequest struct {
	StoreID     uuid.UUID       `json:"storeId" binding:"required"`
	Category    string          `json:"category" binding:"required,expensecategory"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate *time.Time      `json:"expenseDate"`
	Vendor      string          `json:"vendor"`
	Notes       string          `json:"notes"`
}

// UpdateExpenseRequest revises a recorded expense
type UpdateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,expensecategory"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate *time.Time      `json:"expenseDate"`
	Vendor      string          `json:"vendor"`
	Notes       string          `json:"notes"`
}

// ExpenseResponse is the API representation of an expense
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"storeId"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expenseDate"`
	Vendor      string          `json:"vendor,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ListExpensesQuery narrows an expense listing
type ListExpensesQuery struct {
	StoreID  *uuid.UUID
	Category *string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// ToExpenseResponse converts a domain expense to its API representation
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		StoreID:     e.StoreID,
		Category:    string(e.Category),
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		Vendor:      e.Vendor,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ExpenseService handles expense bookkeeping
type ExpenseService struct {
	expenseRepo finance.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// Create records a new expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	expenseDate := time.Time{}
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}
	expense, err := finance.NewExpense(req.StoreID, finance.ExpenseCategory(req.Category), req.Amount, expenseDate, req.Vendor, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// Update revises a recorded expense
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expenseDate := time.Time{}
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}
	if err := expense.Update(finance.ExpenseCategory(req.Category), req.Amount, expenseDate, req.Vendor, req.Notes); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.expenseRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, id)
}

// Get retrieves one expense
func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves expenses matching the query, newest first
func (s *ExpenseService) List(ctx context.Context, query ListExpensesQuery) (*shared.Paginated[ExpenseResponse], error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	filter := finance.ExpenseFilter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
			OrderBy:  "expense_date",
			OrderDir: "desc",
		},
		StoreID:  query.StoreID,
		DateFrom: query.DateFrom,
		DateTo:   query.DateTo,
	}
	if query.Category != nil {
		category := finance.ExpenseCategory(*query.Category)
		if !category.IsValid() {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
		}
		filter.Category = &category
	}

	result, err := s.expenseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ExpenseResponse, 0, len(result.Items))
	for i := range result.Items {
		responses = append(responses, ToExpenseResponse(&result.Items[i]))
	}
	page := shared.NewPaginated(responses, result.Total, query.Page, query.PageSize)
	return &page, nil
}
