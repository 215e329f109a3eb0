package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBatchRepo is an in-memory BatchRepository. referenced marks batch IDs
// that order lines point at; used holds the summed line quantities per batch,
// tracked separately from the remaining counter like the real order_lines
// table.
type fakeBatchRepo struct {
	batches    map[uuid.UUID]*inventory.Batch
	referenced map[uuid.UUID]bool
	used       map[uuid.UUID]int64
	nextSeq    int64
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{
		batches:    make(map[uuid.UUID]*inventory.Batch),
		referenced: make(map[uuid.UUID]bool),
		used:       make(map[uuid.UUID]int64),
	}
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBatchRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBatchRepo) FindOpenForAllocation(_ context.Context, storeID, variantID uuid.UUID) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.batches {
		if b.StoreID == storeID && b.VariantID == variantID && b.RemainingQty > 0 {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindByVariant(_ context.Context, storeID, variantID uuid.UUID, _ shared.Filter) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.batches {
		if b.StoreID == storeID && b.VariantID == variantID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) Create(_ context.Context, batch *inventory.Batch) error {
	r.nextSeq++
	batch.ArrivalSeq = r.nextSeq
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *inventory.Batch) error {
	if _, ok := r.batches[batch.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

func (r *fakeBatchRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.batches[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.batches, id)
	return nil
}

func (r *fakeBatchRepo) UsedQuantity(_ context.Context, batchID uuid.UUID) (int64, error) {
	return r.used[batchID], nil
}

func (r *fakeBatchRepo) IsReferenced(_ context.Context, batchID uuid.UUID) (bool, error) {
	return r.referenced[batchID], nil
}

// fakeStockLevelRepo is an in-memory StockLevelRepository keyed by
// (store, variant).
type fakeStockLevelRepo struct {
	levels  map[string]*inventory.StockLevel
	batches *fakeBatchRepo
}

func newFakeStockLevelRepo(batches *fakeBatchRepo) *fakeStockLevelRepo {
	return &fakeStockLevelRepo{
		levels:  make(map[string]*inventory.StockLevel),
		batches: batches,
	}
}

func pairKey(storeID, variantID uuid.UUID) string {
	return storeID.String() + "/" + variantID.String()
}

func (r *fakeStockLevelRepo) FindByPair(_ context.Context, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	l, ok := r.levels[pairKey(storeID, variantID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeStockLevelRepo) FindByPairForUpdate(ctx context.Context, storeID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	return r.FindByPair(ctx, storeID, variantID)
}

func (r *fakeStockLevelRepo) GetOrCreate(ctx context.Context, storeID, variantID uuid.UUID, defaultMinStock int64) (*inventory.StockLevel, error) {
	if l, err := r.FindByPair(ctx, storeID, variantID); err == nil {
		return l, nil
	}
	level, err := inventory.NewStockLevel(variantID, storeID, defaultMinStock)
	if err != nil {
		return nil, err
	}
	copied := *level
	r.levels[pairKey(storeID, variantID)] = &copied
	return level, nil
}

func (r *fakeStockLevelRepo) FindByStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]inventory.StockLevel, int64, error) {
	var out []inventory.StockLevel
	for _, l := range r.levels {
		if l.StoreID == storeID {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeStockLevelRepo) FindBelowMinimum(_ context.Context, storeID uuid.UUID) ([]inventory.StockLevel, error) {
	var out []inventory.StockLevel
	for _, l := range r.levels {
		if l.StoreID == storeID && l.IsBelowMinimum() {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeStockLevelRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	copied := *level
	r.levels[pairKey(level.StoreID, level.VariantID)] = &copied
	return nil
}

func (r *fakeStockLevelRepo) RecomputeQuantity(_ context.Context, storeID, variantID uuid.UUID) (int64, error) {
	var sum int64
	for _, b := range r.batches.batches {
		if b.StoreID == storeID && b.VariantID == variantID {
			sum += b.RemainingQty
		}
	}
	return sum, nil
}

type fakeVariantRepo struct {
	variants map[uuid.UUID]*catalog.Variant
}

func (r *fakeVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

func (r *fakeVariantRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVariantRepo) FindBySKU(_ context.Context, _ string) (*catalog.Variant, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeVariantRepo) FindByBarcode(_ context.Context, _ string) (*catalog.Variant, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeVariantRepo) FindByProduct(_ context.Context, _ uuid.UUID) ([]catalog.Variant, error) {
	return nil, nil
}

func (r *fakeVariantRepo) Save(_ context.Context, v *catalog.Variant) error {
	r.variants[v.ID] = v
	return nil
}

func (r *fakeVariantRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeStoreRepo struct {
	stores map[uuid.UUID]*store.Store
}

func (r *fakeStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*store.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeStoreRepo) FindByCode(_ context.Context, _ string) (*store.Store, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeStoreRepo) FindAll(_ context.Context) ([]store.Store, error) { return nil, nil }

func (r *fakeStoreRepo) Save(_ context.Context, s *store.Store) error {
	r.stores[s.ID] = s
	return nil
}

type receivingFixture struct {
	service   *ReceivingService
	batches   *fakeBatchRepo
	levels    *fakeStockLevelRepo
	variantID uuid.UUID
	storeID   uuid.UUID
}

func newReceivingFixture(t *testing.T) *receivingFixture {
	t.Helper()

	product, err := catalog.NewProduct("Nocturne", "Maison Verte", "EDP")
	require.NoError(t, err)
	variant, err := catalog.NewVariant(product.ID, "NOC-50", "Nocturne 50ml", decimal.NewFromInt(120))
	require.NoError(t, err)
	shop, err := store.NewStore("MAIN", "Main Street", decimal.NewFromFloat(0.18))
	require.NoError(t, err)

	batches := newFakeBatchRepo()
	levels := newFakeStockLevelRepo(batches)
	service := NewReceivingService(
		NewNoOpTransactionScope(batches, levels),
		&fakeVariantRepo{variants: map[uuid.UUID]*catalog.Variant{variant.ID: variant}},
		&fakeStoreRepo{stores: map[uuid.UUID]*store.Store{shop.ID: shop}},
	)

	return &receivingFixture{
		service:   service,
		batches:   batches,
		levels:    levels,
		variantID: variant.ID,
		storeID:   shop.ID,
	}
}

func (f *receivingFixture) receive(t *testing.T, qty int64, cost int64) *BatchResponse {
	t.Helper()
	resp, err := f.service.ReceiveBatch(context.Background(), ReceiveBatchRequest{
		VariantID: f.variantID,
		StoreID:   f.storeID,
		Quantity:  qty,
		UnitCost:  decimal.NewFromInt(cost),
	})
	require.NoError(t, err)
	return resp
}

func (f *receivingFixture) stockQty(t *testing.T) int64 {
	t.Helper()
	resp, err := f.service.GetStock(context.Background(), f.storeID, f.variantID)
	require.NoError(t, err)
	return resp.Quantity
}

func TestReceiveBatch(t *testing.T) {
	t.Run("creates batch and increases stock level", func(t *testing.T) {
		f := newReceivingFixture(t)

		resp := f.receive(t, 10, 40)

		assert.Equal(t, int64(10), resp.RemainingQty)
		assert.Equal(t, int64(10), f.stockQty(t))
	})

	t.Run("successive receipts accumulate", func(t *testing.T) {
		f := newReceivingFixture(t)

		f.receive(t, 10, 40)
		f.receive(t, 5, 45)

		assert.Equal(t, int64(15), f.stockQty(t))

		recomputed, err := f.levels.RecomputeQuantity(context.Background(), f.storeID, f.variantID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), recomputed)
	})

	t.Run("rejects unknown variant", func(t *testing.T) {
		f := newReceivingFixture(t)

		_, err := f.service.ReceiveBatch(context.Background(), ReceiveBatchRequest{
			VariantID: uuid.New(),
			StoreID:   f.storeID,
			Quantity:  10,
			UnitCost:  decimal.NewFromInt(40),
		})
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newReceivingFixture(t)

		_, err := f.service.ReceiveBatch(context.Background(), ReceiveBatchRequest{
			VariantID: f.variantID,
			StoreID:   f.storeID,
			Quantity:  0,
			UnitCost:  decimal.NewFromInt(40),
		})
		assert.Error(t, err)
	})

	t.Run("honors explicit received date", func(t *testing.T) {
		f := newReceivingFixture(t)
		received := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

		resp, err := f.service.ReceiveBatch(context.Background(), ReceiveBatchRequest{
			VariantID:  f.variantID,
			StoreID:    f.storeID,
			Quantity:   3,
			UnitCost:   decimal.NewFromInt(40),
			ReceivedAt: &received,
		})

		require.NoError(t, err)
		assert.Equal(t, received, resp.ReceivedAt)
	})
}

func TestUpdateBatch(t *testing.T) {
	t.Run("growing an untouched batch raises stock by the delta", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)

		newQty := int64(14)
		_, err := f.service.UpdateBatch(context.Background(), batch.ID, UpdateBatchRequest{Quantity: &newQty})

		require.NoError(t, err)
		assert.Equal(t, int64(14), f.stockQty(t))
	})

	t.Run("shrinking keeps stock consistent", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)

		newQty := int64(6)
		_, err := f.service.UpdateBatch(context.Background(), batch.ID, UpdateBatchRequest{Quantity: &newQty})

		require.NoError(t, err)
		assert.Equal(t, int64(6), f.stockQty(t))

		recomputed, err := f.levels.RecomputeQuantity(context.Background(), f.storeID, f.variantID)
		require.NoError(t, err)
		assert.Equal(t, f.stockQty(t), recomputed)
	})

	t.Run("refuses shrinking below quantity already sold", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)

		// simulate 6 units sold from the batch
		stored := f.batches.batches[batch.ID]
		require.NoError(t, stored.Draw(6))
		f.batches.used[batch.ID] = 6
		level, err := f.levels.FindByPairForUpdate(context.Background(), f.storeID, f.variantID)
		require.NoError(t, err)
		require.NoError(t, level.Decrease(6))
		require.NoError(t, f.levels.Save(context.Background(), level))

		newQty := int64(5)
		_, err = f.service.UpdateBatch(context.Background(), batch.ID, UpdateBatchRequest{Quantity: &newQty})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already sold")
		assert.Equal(t, int64(4), f.stockQty(t))
	})

	t.Run("sold quantity comes from order lines, not the remaining counter", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)

		// Order lines record 6 units drawn; the remaining counter has not
		// caught up and still reads 10.
		f.batches.used[batch.ID] = 6

		newQty := int64(5)
		_, err := f.service.UpdateBatch(context.Background(), batch.ID, UpdateBatchRequest{Quantity: &newQty})

		require.Error(t, err)
		assert.True(t, shared.IsDomainErrorWithCode(err, "CONFLICT"))
	})

	t.Run("resize recomputes remaining from the line-derived sold total", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)

		stored := f.batches.batches[batch.ID]
		require.NoError(t, stored.Draw(6))
		f.batches.used[batch.ID] = 6
		level, err := f.levels.FindByPairForUpdate(context.Background(), f.storeID, f.variantID)
		require.NoError(t, err)
		require.NoError(t, level.Decrease(6))
		require.NoError(t, f.levels.Save(context.Background(), level))

		newQty := int64(12)
		resp, err := f.service.UpdateBatch(context.Background(), batch.ID, UpdateBatchRequest{Quantity: &newQty})

		require.NoError(t, err)
		assert.Equal(t, int64(6), resp.RemainingQty)
		assert.Equal(t, int64(6), f.stockQty(t))
	})

	t.Run("cost correction leaves quantities alone", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)

		newCost := decimal.NewFromInt(55)
		resp, err := f.service.UpdateBatch(context.Background(), batch.ID, UpdateBatchRequest{UnitCost: &newCost})

		require.NoError(t, err)
		assert.True(t, resp.UnitCost.Equal(newCost))
		assert.Equal(t, int64(10), f.stockQty(t))
	})

	t.Run("unknown batch", func(t *testing.T) {
		f := newReceivingFixture(t)

		newQty := int64(5)
		_, err := f.service.UpdateBatch(context.Background(), uuid.New(), UpdateBatchRequest{Quantity: &newQty})
		assert.Error(t, err)
	})
}

func TestDeleteBatch(t *testing.T) {
	t.Run("deleting an unused batch removes its stock", func(t *testing.T) {
		f := newReceivingFixture(t)
		f.receive(t, 10, 40)
		second := f.receive(t, 5, 45)

		require.NoError(t, f.service.DeleteBatch(context.Background(), second.ID))
		assert.Equal(t, int64(10), f.stockQty(t))
	})

	t.Run("refuses deleting a referenced batch", func(t *testing.T) {
		f := newReceivingFixture(t)
		batch := f.receive(t, 10, 40)
		f.batches.referenced[batch.ID] = true

		err := f.service.DeleteBatch(context.Background(), batch.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "referenced")
		assert.Equal(t, int64(10), f.stockQty(t))
	})
}

func TestStockQueries(t *testing.T) {
	t.Run("missing stock level reads as zero", func(t *testing.T) {
		f := newReceivingFixture(t)

		resp, err := f.service.GetStock(context.Background(), f.storeID, f.variantID)

		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.Quantity)
	})

	t.Run("below minimum listing", func(t *testing.T) {
		f := newReceivingFixture(t)
		f.receive(t, 3, 40) // default min stock is 5

		low, err := f.service.ListBelowMinimum(context.Background(), f.storeID)

		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.True(t, low[0].BelowMinimum)
	})

	t.Run("set min stock", func(t *testing.T) {
		f := newReceivingFixture(t)
		f.receive(t, 3, 40)

		resp, err := f.service.SetMinStock(context.Background(), f.storeID, f.variantID, 2)

		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.MinStock)
		assert.False(t, resp.BelowMinimum)
	})
}
