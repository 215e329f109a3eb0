package persistence

import (
	"context"

	appinventory "github.com/scentpos/backend/internal/application/inventory"
	appsales "github.com/scentpos/backend/internal/application/sales"
	domaininventory "github.com/scentpos/backend/internal/domain/inventory"
	domainsales "github.com/scentpos/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements appinventory.TransactionScope
// using GORM transactions.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. Every
// repository handed to fn is bound to that transaction.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx})
	})
}

// gormInventoryRepositories provides transaction-scoped repositories
type gormInventoryRepositories struct {
	tx *gorm.DB
}

func (r *gormInventoryRepositories) BatchRepo() domaininventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *gormInventoryRepositories) StockLevelRepo() domaininventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// GormSalesTransactionScope implements appsales.TransactionScope using GORM
// transactions. Settlement draws batches, decrements stock levels and writes
// the order inside one transaction.
type GormSalesTransactionScope struct {
	db *gorm.DB
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope
func NewGormSalesTransactionScope(db *gorm.DB) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSalesRepositories{tx: tx})
	})
}

type gormSalesRepositories struct {
	tx *gorm.DB
}

func (r *gormSalesRepositories) OrderRepo() domainsales.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormSalesRepositories) BatchRepo() domaininventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *gormSalesRepositories) StockLevelRepo() domaininventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

var (
	_ appinventory.TransactionScope          = (*GormInventoryTransactionScope)(nil)
	_ appinventory.TransactionalRepositories = (*gormInventoryRepositories)(nil)
	_ appsales.TransactionScope              = (*GormSalesTransactionScope)(nil)
	_ appsales.TransactionalRepositories     = (*gormSalesRepositories)(nil)
)
