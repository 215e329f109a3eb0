package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/report"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFinanceReportRepository implements report.FinanceReportRepository
// using GORM. All queries consider completed orders only and take no row
// locks, so reporting never blocks settlement.
type GormFinanceReportRepository struct {
	db *gorm.DB
}

// NewGormFinanceReportRepository creates a new GormFinanceReportRepository
func NewGormFinanceReportRepository(db *gorm.DB) *GormFinanceReportRepository {
	return &GormFinanceReportRepository{db: db}
}

func (r *GormFinanceReportRepository) completedOrders(ctx context.Context, storeID *uuid.UUID, period report.Period) *gorm.DB {
	query := r.db.WithContext(ctx).Table("orders o").
		Where("o.status = ?", string(sales.OrderStatusCompleted)).
		Where("o.created_at BETWEEN ? AND ?", period.From, period.To)
	if storeID != nil {
		query = query.Where("o.store_id = ?", *storeID)
	}
	return query
}

// SummarizeSales aggregates revenue, COGS, order count and units sold.
// Revenue and order count come from the orders table alone; COGS and units
// from order lines, so the line join cannot double-count order totals.
func (r *GormFinanceReportRepository) SummarizeSales(ctx context.Context, storeID *uuid.UUID, period report.Period) (*report.SummaryRow, error) {
	type orderAgg struct {
		Revenue    decimal.Decimal
		OrderCount int64
	}
	var orders orderAgg
	if err := r.completedOrders(ctx, storeID, period).
		Select("COALESCE(SUM(o.total), 0) as revenue, COUNT(o.id) as order_count").
		Scan(&orders).Error; err != nil {
		return nil, err
	}

	type lineAgg struct {
		COGS      decimal.Decimal
		UnitsSold int64
	}
	var lines lineAgg
	if err := r.completedOrders(ctx, storeID, period).
		Joins("JOIN order_lines l ON l.order_id = o.id").
		Select("COALESCE(SUM(l.unit_cost * l.quantity), 0) as cogs, COALESCE(SUM(l.quantity), 0) as units_sold").
		Scan(&lines).Error; err != nil {
		return nil, err
	}

	return &report.SummaryRow{
		Revenue:    orders.Revenue,
		COGS:       lines.COGS,
		OrderCount: orders.OrderCount,
		UnitsSold:  lines.UnitsSold,
	}, nil
}

// SumExpenses totals expenses over the period
func (r *GormFinanceReportRepository) SumExpenses(ctx context.Context, storeID *uuid.UUID, period report.Period) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := r.db.WithContext(ctx).Table("expenses").
		Where("expense_date BETWEEN ? AND ?", period.From, period.To)
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// ExpensesByCategory sums expenses per category over the period
func (r *GormFinanceReportRepository) ExpensesByCategory(ctx context.Context, storeID *uuid.UUID, period report.Period) ([]report.ExpenseByCategory, error) {
	var results []report.ExpenseByCategory
	query := r.db.WithContext(ctx).Table("expenses").
		Select("category, COALESCE(SUM(amount), 0) as amount").
		Where("expense_date BETWEEN ? AND ?", period.From, period.To)
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	err := query.Group("category").Order("amount DESC").Scan(&results).Error
	return results, err
}

// TopProducts ranks products by line revenue over the period
func (r *GormFinanceReportRepository) TopProducts(ctx context.Context, storeID *uuid.UUID, period report.Period, limit int) ([]report.TopProduct, error) {
	var results []report.TopProduct
	err := r.completedOrders(ctx, storeID, period).
		Joins("JOIN order_lines l ON l.order_id = o.id").
		Joins("JOIN variants v ON v.id = l.variant_id").
		Joins("JOIN products p ON p.id = v.product_id").
		Select(`
			p.id as product_id,
			p.name as product_name,
			COALESCE(SUM(l.quantity), 0) as units_sold,
			COALESCE(SUM(l.total_price), 0) as revenue
		`).
		Group("p.id, p.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

// SalesTrend buckets revenue and COGS over the period. Two grouped queries
// are merged in memory; joining lines into the revenue query would multiply
// order totals by their line count.
func (r *GormFinanceReportRepository) SalesTrend(ctx context.Context, storeID *uuid.UUID, period report.Period, bucket report.TrendBucket) ([]report.TrendPoint, error) {
	type revenueRow struct {
		Bucket  time.Time
		Revenue decimal.Decimal
	}
	var revenues []revenueRow
	if err := r.completedOrders(ctx, storeID, period).
		Select("DATE_TRUNC(?, o.created_at) as bucket, COALESCE(SUM(o.total), 0) as revenue", string(bucket)).
		Group("bucket").
		Order("bucket ASC").
		Scan(&revenues).Error; err != nil {
		return nil, err
	}

	type cogsRow struct {
		Bucket time.Time
		COGS   decimal.Decimal
	}
	var cogsRows []cogsRow
	if err := r.completedOrders(ctx, storeID, period).
		Joins("JOIN order_lines l ON l.order_id = o.id").
		Select("DATE_TRUNC(?, o.created_at) as bucket, COALESCE(SUM(l.unit_cost * l.quantity), 0) as cogs", string(bucket)).
		Group("bucket").
		Order("bucket ASC").
		Scan(&cogsRows).Error; err != nil {
		return nil, err
	}

	cogsByBucket := make(map[time.Time]decimal.Decimal, len(cogsRows))
	for _, row := range cogsRows {
		cogsByBucket[row.Bucket] = row.COGS
	}

	points := make([]report.TrendPoint, 0, len(revenues))
	for _, row := range revenues {
		cogs := cogsByBucket[row.Bucket]
		points = append(points, report.TrendPoint{
			Bucket:  row.Bucket,
			Revenue: row.Revenue,
			COGS:    cogs,
			Profit:  row.Revenue.Sub(cogs),
		})
	}
	return points, nil
}
