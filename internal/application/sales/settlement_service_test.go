package sales

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is the shared in-memory state behind the fake repositories
type memStore struct {
	batches     map[uuid.UUID]*inventory.Batch
	levels      map[string]*inventory.StockLevel
	orders      map[uuid.UUID]*sales.Order
	orderNos    map[string]uuid.UUID
	failCreates int // first N order creates fail with ALREADY_EXISTS
}

func newMemStore() *memStore {
	return &memStore{
		batches:  make(map[uuid.UUID]*inventory.Batch),
		levels:   make(map[string]*inventory.StockLevel),
		orders:   make(map[uuid.UUID]*sales.Order),
		orderNos: make(map[string]uuid.UUID),
	}
}

// snapshot copies repository state only; failCreates is fault-injection
// bookkeeping and survives rollbacks.
func (m *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range m.batches {
		b := *v
		c.batches[k] = &b
	}
	for k, v := range m.levels {
		l := *v
		c.levels[k] = &l
	}
	for k, v := range m.orders {
		o := *v
		o.Lines = append([]sales.OrderLine(nil), v.Lines...)
		c.orders[k] = &o
	}
	for k, v := range m.orderNos {
		c.orderNos[k] = v
	}
	return c
}

func (m *memStore) restore(from *memStore) {
	m.batches = from.batches
	m.levels = from.levels
	m.orders = from.orders
	m.orderNos = from.orderNos
}

func levelKey(storeID, variantID uuid.UUID) string {
	return storeID.String() + "/" + variantID.String()
}

type memBatchRepo struct{ m *memStore }

func (r memBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	b, ok := r.m.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r memBatchRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	return r.FindByID(ctx, id)
}

func (r memBatchRepo) FindOpenForAllocation(_ context.Context, storeID, variantID uuid.UUID) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.m.batches {
		if b.StoreID == storeID && b.VariantID == variantID && b.RemainingQty > 0 {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.Before(out[j].ReceivedAt)
		}
		return out[i].ArrivalSeq < out[j].ArrivalSeq
	})
	return out, nil
}

func (r memBatchRepo) FindByVariant(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]inventory.Batch, error) {
	return nil, nil
}

func (r memBatchRepo) Create(_ context.Context, batch *inventory.Batch) error {
	copied := *batch
	r.m.batches[batch.ID] = &copied
	return nil
}

func (r memBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	copied := *batch
	r.m.batches[batch.ID] = &copied
	return nil
}

func (r memBatchRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.m.batches, id)
	return nil
}

func (r memBatchRepo) UsedQuantity(_ context.Context, batchID uuid.UUID) (int64, error) {
	b, ok := r.m.batches[batchID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return b.UsedQty(), nil
}

func (r memBatchRepo) IsReferenced(_ context.Context, _ uuid.UUID) (bool, error) {
	return false, nil
}

type memStockRepo struct{ m *memStore }

func (r memStockRepo) FindByPair(_ context.Context, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	l, ok := r.m.levels[levelKey(storeID, variantID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r memStockRepo) FindByPairForUpdate(ctx context.Context, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	return r.FindByPair(ctx, storeID, variantID)
}

func (r memStockRepo) GetOrCreate(ctx context.Context, storeID, variantID uuid.UUID, defaultMinStock int64) (*inventory.StockLevel, error) {
	if l, err := r.FindByPair(ctx, storeID, variantID); err == nil {
		return l, nil
	}
	level, err := inventory.NewStockLevel(variantID, storeID, defaultMinStock)
	if err != nil {
		return nil, err
	}
	copied := *level
	r.m.levels[levelKey(storeID, variantID)] = &copied
	return level, nil
}

func (r memStockRepo) FindByStore(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]inventory.StockLevel, int64, error) {
	return nil, 0, nil
}

func (r memStockRepo) FindBelowMinimum(_ context.Context, _ uuid.UUID) ([]inventory.StockLevel, error) {
	return nil, nil
}

func (r memStockRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	copied := *level
	r.m.levels[levelKey(level.StoreID, level.VariantID)] = &copied
	return nil
}

func (r memStockRepo) RecomputeQuantity(_ context.Context, storeID, variantID uuid.UUID) (int64, error) {
	var sum int64
	for _, b := range r.m.batches {
		if b.StoreID == storeID && b.VariantID == variantID {
			sum += b.RemainingQty
		}
	}
	return sum, nil
}

type memOrderRepo struct{ m *memStore }

func (r memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Order, error) {
	o, ok := r.m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r memOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*sales.Order, error) {
	id, ok := r.m.orderNos[orderNumber]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r.m.orders[id], nil
}

func (r memOrderRepo) FindAll(_ context.Context, _ sales.OrderFilter) (*shared.Paginated[sales.Order], error) {
	items := make([]sales.Order, 0, len(r.m.orders))
	for _, o := range r.m.orders {
		items = append(items, *o)
	}
	p := shared.NewPaginated(items, int64(len(items)), 1, 20)
	return &p, nil
}

func (r memOrderRepo) Create(_ context.Context, order *sales.Order) error {
	if r.m.failCreates > 0 {
		r.m.failCreates--
		return shared.ErrAlreadyExists
	}
	if _, dup := r.m.orderNos[order.OrderNumber]; dup {
		return shared.ErrAlreadyExists
	}
	copied := *order
	copied.Lines = append([]sales.OrderLine(nil), order.Lines...)
	r.m.orders[order.ID] = &copied
	r.m.orderNos[order.OrderNumber] = order.ID
	return nil
}

// txFake snapshots the store before Execute and restores it when the
// function fails, mimicking a database rollback.
type txFake struct{ m *memStore }

func (t txFake) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	before := t.m.snapshot()
	if err := fn(t); err != nil {
		t.m.restore(before)
		return err
	}
	return nil
}

func (t txFake) OrderRepo() sales.OrderRepository               { return memOrderRepo{t.m} }
func (t txFake) BatchRepo() inventory.BatchRepository           { return memBatchRepo{t.m} }
func (t txFake) StockLevelRepo() inventory.StockLevelRepository { return memStockRepo{t.m} }

type stubVariantRepo struct{ variants map[uuid.UUID]catalog.Variant }

func (r stubVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &v, nil
}

func (r stubVariantRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r stubVariantRepo) FindBySKU(_ context.Context, _ string) (*catalog.Variant, error) {
	return nil, shared.ErrNotFound
}

func (r stubVariantRepo) FindByBarcode(_ context.Context, _ string) (*catalog.Variant, error) {
	return nil, shared.ErrNotFound
}

func (r stubVariantRepo) FindByProduct(_ context.Context, _ uuid.UUID) ([]catalog.Variant, error) {
	return nil, nil
}

func (r stubVariantRepo) Save(_ context.Context, _ *catalog.Variant) error { return nil }
func (r stubVariantRepo) Delete(_ context.Context, _ uuid.UUID) error      { return nil }

type stubStoreRepo struct{ s *store.Store }

func (r stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*store.Store, error) {
	if r.s != nil && r.s.ID == id {
		return r.s, nil
	}
	return nil, shared.ErrNotFound
}

func (r stubStoreRepo) FindByCode(_ context.Context, _ string) (*store.Store, error) {
	return nil, shared.ErrNotFound
}

func (r stubStoreRepo) FindAll(_ context.Context) ([]store.Store, error) { return nil, nil }
func (r stubStoreRepo) Save(_ context.Context, _ *store.Store) error     { return nil }

type settlementFixture struct {
	service *SettlementService
	mem     *memStore
	shop    *store.Store
	cashier uuid.UUID
}

func newSettlementFixture(t *testing.T, taxRate decimal.Decimal, variants ...catalog.Variant) *settlementFixture {
	t.Helper()

	shop, err := store.NewStore("MAIN", "Main Street", taxRate)
	require.NoError(t, err)

	byID := make(map[uuid.UUID]catalog.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	mem := newMemStore()
	service := NewSettlementService(
		txFake{mem},
		stubVariantRepo{byID},
		stubStoreRepo{shop},
	)

	return &settlementFixture{
		service: service,
		mem:     mem,
		shop:    shop,
		cashier: uuid.New(),
	}
}

func (f *settlementFixture) seedBatch(t *testing.T, variantID uuid.UUID, qty int64, cost int64, receivedAt time.Time, seq int64) *inventory.Batch {
	t.Helper()
	batch, err := inventory.NewBatch(variantID, f.shop.ID, qty, decimal.NewFromInt(cost), "", nil)
	require.NoError(t, err)
	batch.ReceivedAt = receivedAt
	batch.ArrivalSeq = seq
	f.mem.batches[batch.ID] = batch

	key := levelKey(f.shop.ID, variantID)
	level, ok := f.mem.levels[key]
	if !ok {
		level, err = inventory.NewStockLevel(variantID, f.shop.ID, 0)
		require.NoError(t, err)
		f.mem.levels[key] = level
	}
	require.NoError(t, level.Increase(qty))
	return batch
}

func (f *settlementFixture) stockQty(variantID uuid.UUID) int64 {
	l, ok := f.mem.levels[levelKey(f.shop.ID, variantID)]
	if !ok {
		return 0
	}
	return l.Quantity
}

func testVariant(t *testing.T, sku string, price int64) catalog.Variant {
	t.Helper()
	v, err := catalog.NewVariant(uuid.New(), sku, sku, decimal.NewFromInt(price))
	require.NoError(t, err)
	return *v
}

func TestCheckoutSettlement(t *testing.T) {
	day := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("draws from the oldest batch first and captures its cost", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		old := f.seedBatch(t, v.ID, 5, 40, day, 1)
		newer := f.seedBatch(t, v.ID, 10, 55, day.Add(24*time.Hour), 2)

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 7}},
			PaymentMethod: "CASH",
		})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 2)
		assert.Equal(t, old.ID, *resp.Lines[0].BatchID)
		assert.Equal(t, int64(5), resp.Lines[0].Quantity)
		assert.True(t, resp.Lines[0].UnitCost.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, newer.ID, *resp.Lines[1].BatchID)
		assert.Equal(t, int64(2), resp.Lines[1].Quantity)
		assert.True(t, resp.Lines[1].UnitCost.Equal(decimal.NewFromInt(55)))

		assert.Equal(t, int64(0), f.mem.batches[old.ID].RemainingQty)
		assert.Equal(t, int64(8), f.mem.batches[newer.ID].RemainingQty)
		assert.Equal(t, int64(8), f.stockQty(v.ID))
	})

	t.Run("later cost edits do not rewrite captured line costs", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		batch := f.seedBatch(t, v.ID, 5, 40, day, 1)

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 2}},
			PaymentMethod: "CARD",
		})
		require.NoError(t, err)

		require.NoError(t, f.mem.batches[batch.ID].ChangeUnitCost(decimal.NewFromInt(99)))

		stored := f.mem.orders[resp.ID]
		assert.True(t, stored.Lines[0].UnitCost.Equal(decimal.NewFromInt(40)))
	})

	t.Run("applies the store tax rate at the moment of sale", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 50000)
		f := newSettlementFixture(t, decimal.NewFromFloat(0.18), v)
		f.seedBatch(t, v.ID, 10, 40, day, 1)

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 2}},
			Discount:      decimal.NewFromInt(10000),
			PaymentMethod: "CASH",
		})

		require.NoError(t, err)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(100000)))
		assert.True(t, resp.Tax.Equal(decimal.NewFromInt(16200)))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(106200)))
		assert.True(t, resp.TaxRate.Equal(decimal.NewFromFloat(0.18)))
	})

	t.Run("insufficient stock rejects the whole cart and leaves no trace", func(t *testing.T) {
		a := testVariant(t, "VAR-A", 100)
		b := testVariant(t, "VAR-B", 100)
		c := testVariant(t, "VAR-C", 100)
		f := newSettlementFixture(t, decimal.Zero, a, b, c)
		f.seedBatch(t, a.ID, 10, 40, day, 1)
		f.seedBatch(t, b.ID, 10, 40, day, 2)
		f.seedBatch(t, c.ID, 1, 40, day, 3)

		_, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:   f.shop.ID,
			CashierID: f.cashier,
			Lines: []CartLine{
				{VariantID: a.ID, Quantity: 3},
				{VariantID: b.ID, Quantity: 3},
				{VariantID: c.ID, Quantity: 2},
			},
			PaymentMethod: "CASH",
		})

		require.Error(t, err)
		assert.True(t, shared.IsDomainErrorWithCode(err, "INSUFFICIENT_STOCK"))
		assert.Contains(t, err.Error(), "VAR-C")
		assert.Contains(t, err.Error(), "requested 2, available 1")

		assert.Equal(t, int64(10), f.stockQty(a.ID))
		assert.Equal(t, int64(10), f.stockQty(b.ID))
		assert.Equal(t, int64(1), f.stockQty(c.ID))
		assert.Empty(t, f.mem.orders)
	})

	t.Run("variant with no stock row reports zero available", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)

		_, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 1}},
			PaymentMethod: "CASH",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "available 0")
	})

	t.Run("honors a per-line price override", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		f.seedBatch(t, v.ID, 10, 40, day, 1)

		override := decimal.NewFromInt(100)
		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 2, UnitPrice: &override}},
			PaymentMethod: "CASH",
		})

		require.NoError(t, err)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(200)))
		require.Len(t, resp.Lines, 1)
		assert.True(t, resp.Lines[0].UnitPrice.Equal(override))
		assert.True(t, resp.Lines[0].TotalPrice.Equal(decimal.NewFromInt(200)))
	})

	t.Run("same variant at different prices keeps separate lines", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		f.seedBatch(t, v.ID, 10, 40, day, 1)

		override := decimal.NewFromInt(90)
		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:   f.shop.ID,
			CashierID: f.cashier,
			Lines: []CartLine{
				{VariantID: v.ID, Quantity: 1},
				{VariantID: v.ID, Quantity: 1, UnitPrice: &override},
			},
			PaymentMethod: "CASH",
		})

		require.NoError(t, err)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(210)))
		require.Len(t, resp.Lines, 2)
		assert.Equal(t, int64(8), f.stockQty(v.ID))
	})

	t.Run("rejects a non-positive price override", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		f.seedBatch(t, v.ID, 10, 40, day, 1)

		zero := decimal.Zero
		_, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 1, UnitPrice: &zero}},
			PaymentMethod: "CASH",
		})

		require.Error(t, err)
		assert.True(t, shared.IsDomainErrorWithCode(err, "INVALID_PRICE"))
		assert.Equal(t, int64(10), f.stockQty(v.ID))
	})

	t.Run("duplicate cart lines are merged before allocation", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		f.seedBatch(t, v.ID, 10, 40, day, 1)

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:   f.shop.ID,
			CashierID: f.cashier,
			Lines: []CartLine{
				{VariantID: v.ID, Quantity: 2},
				{VariantID: v.ID, Quantity: 3},
			},
			PaymentMethod: "CASH",
		})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, int64(5), resp.Lines[0].Quantity)
		assert.Equal(t, int64(5), f.stockQty(v.ID))
	})

	t.Run("retries on order number collision", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)
		f.seedBatch(t, v.ID, 10, 40, day, 1)
		f.mem.failCreates = 1

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 2}},
			PaymentMethod: "CASH",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(8), f.stockQty(v.ID))
		assert.Len(t, f.mem.orders, 1)
		_ = resp
	})

	t.Run("unknown variant in cart", func(t *testing.T) {
		f := newSettlementFixture(t, decimal.Zero)

		_, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: uuid.New(), Quantity: 1}},
			PaymentMethod: "CASH",
		})

		require.Error(t, err)
		assert.True(t, shared.IsDomainErrorWithCode(err, "NOT_FOUND"))
	})
}

func TestCheckoutHold(t *testing.T) {
	day := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("held order draws no stock", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.NewFromFloat(0.18), v)
		batch := f.seedBatch(t, v.ID, 10, 40, day, 1)

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 4}},
			PaymentMethod: "CASH",
			Hold:          true,
		})

		require.NoError(t, err)
		assert.Equal(t, string(sales.OrderStatusOnHold), resp.Status)
		assert.Equal(t, string(sales.PaymentStatusPending), resp.PaymentStatus)
		require.Len(t, resp.Lines, 1)
		assert.Nil(t, resp.Lines[0].BatchID)

		assert.Equal(t, int64(10), f.mem.batches[batch.ID].RemainingQty)
		assert.Equal(t, int64(10), f.stockQty(v.ID))
	})

	t.Run("hold succeeds even with zero stock", func(t *testing.T) {
		v := testVariant(t, "NOC-50", 120)
		f := newSettlementFixture(t, decimal.Zero, v)

		resp, err := f.service.Checkout(context.Background(), CheckoutRequest{
			StoreID:       f.shop.ID,
			CashierID:     f.cashier,
			Lines:         []CartLine{{VariantID: v.ID, Quantity: 4}},
			PaymentMethod: "CASH",
			Hold:          true,
		})

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(480)))
	})
}
