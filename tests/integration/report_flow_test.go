package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	financeapp "github.com/scentpos/backend/internal/application/finance"
	reportapp "github.com/scentpos/backend/internal/application/report"
	salesapp "github.com/scentpos/backend/internal/application/sales"
	"github.com/scentpos/backend/internal/domain/finance"
	"github.com/scentpos/backend/internal/domain/report"
	"github.com/scentpos/backend/internal/infrastructure/cache"
	"github.com/scentpos/backend/internal/infrastructure/persistence"
)

func TestFinancialSummaryOverSettledOrders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	f := newPOSFixture(t)
	ctx := context.Background()

	f.receive(t, 5, decimal.NewFromInt(40))
	f.receive(t, 10, decimal.NewFromInt(45))

	// One settled order: 8 units at 120 retail.
	_, err := f.SettlementService.Checkout(ctx, salesapp.CheckoutRequest{
		StoreID:       f.Store.ID,
		CashierID:     uuid.New(),
		Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 8}},
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	// One held order, which must stay out of every figure.
	_, err = f.SettlementService.Checkout(ctx, salesapp.CheckoutRequest{
		StoreID:       f.Store.ID,
		CashierID:     uuid.New(),
		Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 2}},
		PaymentMethod: "CASH",
		Hold:          true,
	})
	require.NoError(t, err)

	expenseService := financeapp.NewExpenseService(persistence.NewGormExpenseRepository(f.DB.DB))
	_, err = expenseService.Create(ctx, financeapp.CreateExpenseRequest{
		StoreID:  f.Store.ID,
		Category: string(finance.CategoryRent),
		Amount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	reportService := reportapp.NewReportService(
		persistence.NewGormFinanceReportRepository(f.DB.DB),
		cache.NewMemoryCache(),
		zap.NewNop(),
	)

	today := time.Now()
	summary, err := reportService.Summary(ctx, reportapp.SummaryQuery{
		From: today.Add(-24 * time.Hour),
		To:   today,
	})
	require.NoError(t, err)

	// Revenue 8*120, COGS 5*40+3*45, expenses 100.
	assert.True(t, decimal.NewFromInt(960).Equal(summary.Revenue), "revenue %s", summary.Revenue)
	assert.True(t, decimal.NewFromInt(335).Equal(summary.COGS), "cogs %s", summary.COGS)
	assert.True(t, decimal.NewFromInt(625).Equal(summary.GrossProfit))
	assert.True(t, decimal.NewFromInt(100).Equal(summary.Expenses))
	assert.True(t, decimal.NewFromInt(525).Equal(summary.NetProfit))
	assert.Equal(t, int64(1), summary.OrderCount)
	assert.Equal(t, int64(8), summary.UnitsSold)

	require.Len(t, summary.TopProducts, 1)
	assert.Equal(t, int64(8), summary.TopProducts[0].UnitsSold)

	require.Len(t, summary.ExpensesByCategory, 1)
	assert.Equal(t, string(finance.CategoryRent), summary.ExpensesByCategory[0].Category)

	trend, err := reportService.Trend(ctx, reportapp.SummaryQuery{
		From: today.Add(-24 * time.Hour),
		To:   today,
	}, report.BucketDay)
	require.NoError(t, err)
	require.NotEmpty(t, trend)

	var trendRevenue decimal.Decimal
	for _, point := range trend {
		trendRevenue = trendRevenue.Add(point.Revenue)
	}
	assert.True(t, decimal.NewFromInt(960).Equal(trendRevenue), "trend revenue %s", trendRevenue)
}
