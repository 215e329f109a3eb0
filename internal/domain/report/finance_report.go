package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrendBucket is the granularity of a time-bucketed trend query
type TrendBucket string

const (
	BucketDay   TrendBucket = "day"
	BucketWeek  TrendBucket = "week"
	BucketMonth TrendBucket = "month"
	BucketYear  TrendBucket = "year"
)

// IsValid checks if the bucket is supported
func (b TrendBucket) IsValid() bool {
	switch b {
	case BucketDay, BucketWeek, BucketMonth, BucketYear:
		return true
	}
	return false
}

// Period is a closed date range for report queries
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TopProduct is one entry of the best-sellers ranking, grouped by product
type TopProduct struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	UnitsSold   int64           `json:"unitsSold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ExpenseByCategory is one slice of the expense breakdown
type ExpenseByCategory struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// FinancialSummary aggregates completed orders and expenses over a period.
// Held orders are excluded from every figure. ProfitMargin is
// netProfit/revenue as a percentage, zero when there was no revenue.
type FinancialSummary struct {
	Period             Period              `json:"period"`
	Revenue            decimal.Decimal     `json:"revenue"`
	COGS               decimal.Decimal     `json:"cogs"`
	GrossProfit        decimal.Decimal     `json:"grossProfit"`
	Expenses           decimal.Decimal     `json:"expenses"`
	NetProfit          decimal.Decimal     `json:"netProfit"`
	ProfitMargin       decimal.Decimal     `json:"profitMargin"`
	OrderCount         int64               `json:"orderCount"`
	UnitsSold          int64               `json:"unitsSold"`
	AverageOrder       decimal.Decimal     `json:"averageOrder"`
	TopProducts        []TopProduct        `json:"topProducts"`
	ExpensesByCategory []ExpenseByCategory `json:"expensesByCategory"`
}

// TrendPoint is one bucket of a revenue/profit trend series
type TrendPoint struct {
	Bucket  time.Time       `json:"bucket"`
	Revenue decimal.Decimal `json:"revenue"`
	COGS    decimal.Decimal `json:"cogs"`
	Profit  decimal.Decimal `json:"profit"`
}

// SummaryRow is the raw aggregation fetched from storage before derived
// figures (margins, averages) are computed.
type SummaryRow struct {
	Revenue    decimal.Decimal
	COGS       decimal.Decimal
	OrderCount int64
	UnitsSold  int64
}

// FinanceReportRepository defines the read-side aggregation queries. All
// queries consider completed orders only and never take row locks.
type FinanceReportRepository interface {
	SummarizeSales(ctx context.Context, storeID *uuid.UUID, period Period) (*SummaryRow, error)
	SumExpenses(ctx context.Context, storeID *uuid.UUID, period Period) (decimal.Decimal, error)
	ExpensesByCategory(ctx context.Context, storeID *uuid.UUID, period Period) ([]ExpenseByCategory, error)
	TopProducts(ctx context.Context, storeID *uuid.UUID, period Period, limit int) ([]TopProduct, error)
	SalesTrend(ctx context.Context, storeID *uuid.UUID, period Period, bucket TrendBucket) ([]TrendPoint, error)
}
