package sales

import (
	"context"

	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/scentpos/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a
// settlement touches. Allocation, batch draws, stock level decrements and
// order persistence all happen inside one Execute call so a sale either
// fully commits or leaves no trace.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the settlement repositories
// within a transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() sales.OrderRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// StockLevelRepo returns the stock level repository scoped to the current transaction
	StockLevelRepo() inventory.StockLevelRepository
}

// NoOpTransactionScope runs the function without a real transaction. Used
// in tests.
type NoOpTransactionScope struct {
	orderRepo      sales.OrderRepository
	batchRepo      inventory.BatchRepository
	stockLevelRepo inventory.StockLevelRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo sales.OrderRepository,
	batchRepo inventory.BatchRepository,
	stockLevelRepo inventory.StockLevelRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:      orderRepo,
		batchRepo:      batchRepo,
		stockLevelRepo: stockLevelRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() sales.OrderRepository {
	return s.orderRepo
}

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository {
	return s.batchRepo
}

// StockLevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockLevelRepo() inventory.StockLevelRepository {
	return s.stockLevelRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
