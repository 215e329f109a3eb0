package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/report"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTopProductsLimit bounds the best-sellers ranking in a summary
const DefaultTopProductsLimit = 10

// cacheTTL bounds staleness of cached report payloads
const cacheTTL = 5 * time.Minute

// Cache is the report result cache. Failures are tolerated: a cache miss or
// a broken cache degrades to a database query, never to an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, prefix string)
}

// ReportService serves the financial read-side: summaries, rankings and
// trends over completed orders and recorded expenses.
type ReportService struct {
	reportRepo report.FinanceReportRepository
	cache      Cache
	logger     *zap.Logger
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(reportRepo report.FinanceReportRepository, cache Cache, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reportRepo: reportRepo,
		cache:      cache,
		logger:     logger,
	}
}

// SummaryQuery scopes a financial summary. The To bound is extended to the
// end of its day so a same-day range covers the whole trading day.
type SummaryQuery struct {
	StoreID *uuid.UUID
	From    time.Time
	To      time.Time
}

func (q SummaryQuery) validate() error {
	if q.From.IsZero() || q.To.IsZero() {
		return shared.NewDomainError("INVALID_PERIOD", "Report period must have both bounds")
	}
	if q.To.Before(q.From) {
		return shared.NewDomainError("INVALID_PERIOD", "Report period end before start")
	}
	return nil
}

func (q SummaryQuery) period() report.Period {
	return report.Period{From: q.From, To: endOfDay(q.To)}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Summary computes the full financial summary for a period: revenue, COGS,
// profits, margin, expense total with category breakdown and the top-ten
// products by revenue.
func (s *ReportService) Summary(ctx context.Context, query SummaryQuery) (*report.FinancialSummary, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}

	key := cacheKey("summary", query.StoreID, query.From, query.To, "")
	var cached report.FinancialSummary
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	period := query.period()
	row, err := s.reportRepo.SummarizeSales(ctx, query.StoreID, period)
	if err != nil {
		return nil, err
	}
	expenses, err := s.reportRepo.SumExpenses(ctx, query.StoreID, period)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.reportRepo.ExpensesByCategory(ctx, query.StoreID, period)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.reportRepo.TopProducts(ctx, query.StoreID, period, DefaultTopProductsLimit)
	if err != nil {
		return nil, err
	}

	gross := row.Revenue.Sub(row.COGS)
	net := gross.Sub(expenses)
	summary := &report.FinancialSummary{
		Period:             period,
		Revenue:            row.Revenue,
		COGS:               row.COGS,
		GrossProfit:        gross,
		Expenses:           expenses,
		NetProfit:          net,
		OrderCount:         row.OrderCount,
		UnitsSold:          row.UnitsSold,
		TopProducts:        topProducts,
		ExpensesByCategory: byCategory,
	}
	// Margin and average are undefined on an empty period; report zero
	// rather than dividing by it.
	if row.Revenue.IsPositive() {
		summary.ProfitMargin = net.Div(row.Revenue).Mul(decimal.NewFromInt(100))
	}
	if row.OrderCount > 0 {
		summary.AverageOrder = row.Revenue.Div(decimal.NewFromInt(row.OrderCount))
	}

	s.toCache(ctx, key, summary)
	return summary, nil
}

// TopProducts ranks products by revenue over a period
func (s *ReportService) TopProducts(ctx context.Context, query SummaryQuery, limit int) ([]report.TopProduct, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	key := cacheKey("top", query.StoreID, query.From, query.To, fmt.Sprintf("%d", limit))
	var cached []report.TopProduct
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.reportRepo.TopProducts(ctx, query.StoreID, query.period(), limit)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, products)
	return products, nil
}

// Trend buckets revenue and profit over a period
func (s *ReportService) Trend(ctx context.Context, query SummaryQuery, bucket report.TrendBucket) ([]report.TrendPoint, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}
	if !bucket.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown trend bucket")
	}

	key := cacheKey("trend", query.StoreID, query.From, query.To, string(bucket))
	var cached []report.TrendPoint
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	points, err := s.reportRepo.SalesTrend(ctx, query.StoreID, query.period(), bucket)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, points)
	return points, nil
}

// InvalidateCache drops cached report payloads
func (s *ReportService) InvalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, "report:")
	}
}

func cacheKey(kind string, storeID *uuid.UUID, from, to time.Time, extra string) string {
	scope := "all"
	if storeID != nil {
		scope = storeID.String()
	}
	return fmt.Sprintf("report:%s:%s:%d:%d:%s", kind, scope, from.Unix(), to.Unix(), extra)
}

func (s *ReportService) fromCache(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn("discarding unreadable cached report", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ReportService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to marshal report for caching", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, raw, cacheTTL)
}
