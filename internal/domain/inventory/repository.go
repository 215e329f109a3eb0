package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
)

// BatchRepository defines persistence operations for the batch ledger
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindByIDForUpdate locks the batch row FOR UPDATE within the current
	// transaction. Corrections read the batch through this so a concurrent
	// settlement cannot draw from it between the read and the write-back.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindOpenForAllocation returns all batches for the pair with
	// RemainingQty > 0, ordered by (received_at, arrival_seq) ascending.
	// Inside a settlement transaction the rows are locked FOR UPDATE so a
	// concurrent settlement against the same pair blocks until commit.
	FindOpenForAllocation(ctx context.Context, storeID, variantID uuid.UUID) ([]Batch, error)
	FindByVariant(ctx context.Context, storeID, variantID uuid.UUID, filter shared.Filter) ([]Batch, error)
	Create(ctx context.Context, batch *Batch) error
	Save(ctx context.Context, batch *Batch) error
	// Delete removes a batch. Callers must have verified that no order line
	// references it.
	Delete(ctx context.Context, id uuid.UUID) error
	// UsedQuantity returns the total quantity drawn from the batch across
	// all committed order lines.
	UsedQuantity(ctx context.Context, batchID uuid.UUID) (int64, error)
	// IsReferenced reports whether any order line references the batch.
	IsReferenced(ctx context.Context, batchID uuid.UUID) (bool, error)
}

// StockLevelRepository defines persistence operations for the denormalized
// per-(variant, store) stock counters
type StockLevelRepository interface {
	FindByPair(ctx context.Context, storeID, variantID uuid.UUID) (*StockLevel, error)
	// FindByPairForUpdate locks the stock level row FOR UPDATE within the
	// current transaction, serializing concurrent settlements for the pair.
	FindByPairForUpdate(ctx context.Context, storeID, variantID uuid.UUID) (*StockLevel, error)
	// GetOrCreate returns the stock level for the pair, creating it lazily
	// with the given minimum-stock default on first receipt.
	GetOrCreate(ctx context.Context, storeID, variantID uuid.UUID, defaultMinStock int64) (*StockLevel, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]StockLevel, int64, error)
	FindBelowMinimum(ctx context.Context, storeID uuid.UUID) ([]StockLevel, error)
	Save(ctx context.Context, level *StockLevel) error
	// RecomputeQuantity returns the sum of RemainingQty over the pair's
	// batches, for reconciliation against the denormalized counter.
	RecomputeQuantity(ctx context.Context, storeID, variantID uuid.UUID) (int64, error)
}
