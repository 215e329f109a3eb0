package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/scentpos/backend/internal/application/inventory"
	salesapp "github.com/scentpos/backend/internal/application/sales"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/scentpos/backend/internal/infrastructure/persistence"
)

// posFixture wires the real persistence layer and application services
// against a migrated test database.
type posFixture struct {
	DB                *TestDB
	Store             *store.Store
	Variant           *catalog.Variant
	ReceivingService  *inventoryapp.ReceivingService
	SettlementService *salesapp.SettlementService
}

func newPOSFixture(t *testing.T) *posFixture {
	t.Helper()

	tdb := NewTestDB(t)
	ctx := context.Background()

	productRepo := persistence.NewGormProductRepository(tdb.DB)
	variantRepo := persistence.NewGormVariantRepository(tdb.DB)
	storeRepo := persistence.NewGormStoreRepository(tdb.DB)

	st, err := store.NewStore("MAIN", "Main Boutique", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, storeRepo.Save(ctx, st))

	product, err := catalog.NewProduct("Nuit de Velours", "Maison Lumine", "EDP")
	require.NoError(t, err)
	require.NoError(t, productRepo.Save(ctx, product))

	variant, err := catalog.NewVariant(product.ID, "NDV-50", "50ml EDP", decimal.NewFromInt(120))
	require.NoError(t, err)
	require.NoError(t, variantRepo.Save(ctx, variant))

	return &posFixture{
		DB:      tdb,
		Store:   st,
		Variant: variant,
		ReceivingService: inventoryapp.NewReceivingService(
			persistence.NewGormInventoryTransactionScope(tdb.DB), variantRepo, storeRepo),
		SettlementService: salesapp.NewSettlementService(
			persistence.NewGormSalesTransactionScope(tdb.DB), variantRepo, storeRepo),
	}
}

func (f *posFixture) receive(t *testing.T, quantity int64, unitCost decimal.Decimal) *inventoryapp.BatchResponse {
	t.Helper()
	resp, err := f.ReceivingService.ReceiveBatch(context.Background(), inventoryapp.ReceiveBatchRequest{
		VariantID: f.Variant.ID,
		StoreID:   f.Store.ID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		Vendor:    "Maison Lumine",
	})
	require.NoError(t, err)
	return resp
}

func (f *posFixture) stockQuantity(t *testing.T) int64 {
	t.Helper()
	resp, err := f.ReceivingService.GetStock(context.Background(), f.Store.ID, f.Variant.ID)
	require.NoError(t, err)
	return resp.Quantity
}

func TestSettlementConsumesBatchesInArrivalOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	f := newPOSFixture(t)
	ctx := context.Background()

	first := f.receive(t, 5, decimal.NewFromInt(40))
	second := f.receive(t, 10, decimal.NewFromInt(45))
	require.Equal(t, int64(15), f.stockQuantity(t))

	order, err := f.SettlementService.Checkout(ctx, salesapp.CheckoutRequest{
		StoreID:       f.Store.ID,
		CashierID:     uuid.New(),
		Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 8}},
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	assert.Equal(t, string(sales.OrderStatusCompleted), order.Status)
	assert.Equal(t, string(sales.PaymentStatusPaid), order.PaymentStatus)
	require.Len(t, order.Lines, 2)

	// The older batch is drained before the newer one is touched.
	assert.Equal(t, first.ID, *order.Lines[0].BatchID)
	assert.Equal(t, int64(5), order.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(40).Equal(order.Lines[0].UnitCost))

	assert.Equal(t, second.ID, *order.Lines[1].BatchID)
	assert.Equal(t, int64(3), order.Lines[1].Quantity)
	assert.True(t, decimal.NewFromInt(45).Equal(order.Lines[1].UnitCost))

	assert.True(t, decimal.NewFromInt(960).Equal(order.Total), "total was %s", order.Total)

	// Stock counter and batch remainders agree after settlement.
	assert.Equal(t, int64(7), f.stockQuantity(t))

	firstAfter, err := f.ReceivingService.GetBatch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), firstAfter.RemainingQty)

	secondAfter, err := f.ReceivingService.GetBatch(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), secondAfter.RemainingQty)
}

func TestSettlementRejectsInsufficientStockAtomically(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	f := newPOSFixture(t)
	ctx := context.Background()

	f.receive(t, 5, decimal.NewFromInt(40))

	_, err := f.SettlementService.Checkout(ctx, salesapp.CheckoutRequest{
		StoreID:       f.Store.ID,
		CashierID:     uuid.New(),
		Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 6}},
		PaymentMethod: "CASH",
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorWithCode(err, "INSUFFICIENT_STOCK"))

	// Nothing was persisted: stock is untouched and no order exists.
	assert.Equal(t, int64(5), f.stockQuantity(t))

	var orderCount int64
	require.NoError(t, f.DB.DB.Table("orders").Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
}

func TestHeldOrderDrawsNoStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	f := newPOSFixture(t)
	ctx := context.Background()

	f.receive(t, 5, decimal.NewFromInt(40))

	order, err := f.SettlementService.Checkout(ctx, salesapp.CheckoutRequest{
		StoreID:       f.Store.ID,
		CashierID:     uuid.New(),
		Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 3}},
		PaymentMethod: "CASH",
		Hold:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, string(sales.OrderStatusOnHold), order.Status)
	assert.Equal(t, string(sales.PaymentStatusPending), order.PaymentStatus)
	require.Len(t, order.Lines, 1)
	assert.Nil(t, order.Lines[0].BatchID)

	assert.Equal(t, int64(5), f.stockQuantity(t))
}

func TestConcurrentCheckoutsSerialize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	f := newPOSFixture(t)

	f.receive(t, 10, decimal.NewFromInt(40))

	const attempts = 2
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.SettlementService.Checkout(context.Background(), salesapp.CheckoutRequest{
				StoreID:       f.Store.ID,
				CashierID:     uuid.New(),
				Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 7}},
				PaymentMethod: "CARD",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, shared.IsDomainErrorWithCode(err, "INSUFFICIENT_STOCK"),
				"unexpected error: %v", err)
		}
	}

	// Row locks serialize the two checkouts: only one can claim 7 of 10 units.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(3), f.stockQuantity(t))

	// Batches never go negative regardless of interleaving.
	var negative int64
	require.NoError(t, f.DB.DB.Table("batches").Where("remaining_qty < 0").Count(&negative).Error)
	assert.Equal(t, int64(0), negative)
}

func TestOrderNumberIsUniquePerDay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	f := newPOSFixture(t)
	ctx := context.Background()

	f.receive(t, 10, decimal.NewFromInt(40))

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		order, err := f.SettlementService.Checkout(ctx, salesapp.CheckoutRequest{
			StoreID:       f.Store.ID,
			CashierID:     uuid.New(),
			Lines:         []salesapp.CartLine{{VariantID: f.Variant.ID, Quantity: 1}},
			PaymentMethod: "CASH",
		})
		require.NoError(t, err)
		assert.False(t, seen[order.OrderNumber], "duplicate order number %s", order.OrderNumber)
		seen[order.OrderNumber] = true
		assert.Contains(t, order.OrderNumber, time.Now().Format("20060102"))
	}
}
