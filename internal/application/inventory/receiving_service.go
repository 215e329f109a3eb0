package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
)

// ReceivingService handles stock intake and batch corrections. Every write
// that changes a batch quantity also adjusts the matching stock level inside
// the same transaction, so the aggregate always equals the sum of remaining
// batch quantities.
type ReceivingService struct {
	txScope     TransactionScope
	variantRepo catalog.VariantRepository
	storeRepo   store.Repository
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(
	txScope TransactionScope,
	variantRepo catalog.VariantRepository,
	storeRepo store.Repository,
) *ReceivingService {
	return &ReceivingService{
		txScope:     txScope,
		variantRepo: variantRepo,
		storeRepo:   storeRepo,
	}
}

// ReceiveBatch records a stock delivery: creates a batch and increases the
// matching stock level atomically.
func (s *ReceivingService) ReceiveBatch(ctx context.Context, req ReceiveBatchRequest) (*BatchResponse, error) {
	if _, err := s.variantRepo.FindByID(ctx, req.VariantID); err != nil {
		return nil, err
	}
	if _, err := s.storeRepo.FindByID(ctx, req.StoreID); err != nil {
		return nil, err
	}

	batch, err := inventory.NewBatch(req.VariantID, req.StoreID, req.Quantity, req.UnitCost, req.Vendor, req.ManufactureDate)
	if err != nil {
		return nil, err
	}
	if req.ReceivedAt != nil {
		batch.ReceivedAt = *req.ReceivedAt
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.BatchRepo().Create(ctx, batch); err != nil {
			return err
		}
		level, err := repos.StockLevelRepo().GetOrCreate(ctx, req.StoreID, req.VariantID, inventory.DefaultMinStock)
		if err != nil {
			return err
		}
		if err := level.Increase(req.Quantity); err != nil {
			return err
		}
		return repos.StockLevelRepo().Save(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	response := ToBatchResponse(batch)
	return &response, nil
}

// UpdateBatch corrects a recorded delivery. A quantity change applies the
// delta between the new and old remaining quantity to the stock level in the
// same transaction. Shrinking below the quantity already sold is refused.
func (s *ReceivingService) UpdateBatch(ctx context.Context, batchID uuid.UUID, req UpdateBatchRequest) (*BatchResponse, error) {
	var updated *inventory.Batch

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Lock the batch row so a concurrent settlement cannot draw from
		// it between this read and the write-back below.
		batch, err := repos.BatchRepo().FindByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}

		remainingBefore := batch.RemainingQty

		if req.Quantity != nil && *req.Quantity != batch.Quantity {
			used, err := repos.BatchRepo().UsedQuantity(ctx, batchID)
			if err != nil {
				return err
			}
			if err := batch.Resize(*req.Quantity, used); err != nil {
				return err
			}
		}
		if req.UnitCost != nil {
			if err := batch.ChangeUnitCost(*req.UnitCost); err != nil {
				return err
			}
		}
		if req.Vendor != nil {
			batch.Vendor = *req.Vendor
		}
		if req.ManufactureDate != nil {
			batch.ManufactureDate = req.ManufactureDate
		}
		batch.Touch()

		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}

		if delta := batch.RemainingQty - remainingBefore; delta != 0 {
			level, err := repos.StockLevelRepo().FindByPairForUpdate(ctx, batch.StoreID, batch.VariantID)
			if err != nil {
				return err
			}
			if err := level.Adjust(delta); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
				return err
			}
		}

		updated = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToBatchResponse(updated)
	return &response, nil
}

// DeleteBatch removes a batch no order line references. The stock level is
// reduced by the batch's remaining quantity in the same transaction.
func (s *ReceivingService) DeleteBatch(ctx context.Context, batchID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().FindByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}

		referenced, err := repos.BatchRepo().IsReferenced(ctx, batchID)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewDomainError("CONFLICT", "Cannot delete a batch referenced by order lines")
		}

		if batch.RemainingQty > 0 {
			level, err := repos.StockLevelRepo().FindByPairForUpdate(ctx, batch.StoreID, batch.VariantID)
			if err != nil {
				return err
			}
			if err := level.Decrease(batch.RemainingQty); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
				return err
			}
		}

		return repos.BatchRepo().Delete(ctx, batchID)
	})
}

// GetBatch retrieves a single batch
func (s *ReceivingService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	var response *BatchResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		r := ToBatchResponse(batch)
		response = &r
		return nil
	})
	return response, err
}

// ListBatches retrieves the batches of a variant at a store, oldest first
func (s *ReceivingService) ListBatches(ctx context.Context, storeID, variantID uuid.UUID, filter shared.Filter) ([]BatchResponse, error) {
	var responses []BatchResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batches, err := repos.BatchRepo().FindByVariant(ctx, storeID, variantID, filter)
		if err != nil {
			return err
		}
		responses = make([]BatchResponse, 0, len(batches))
		for i := range batches {
			responses = append(responses, ToBatchResponse(&batches[i]))
		}
		return nil
	})
	return responses, err
}

// GetStock retrieves the stock level for a variant at a store. A missing
// row reads as zero on hand.
func (s *ReceivingService) GetStock(ctx context.Context, storeID, variantID uuid.UUID) (*StockLevelResponse, error) {
	var response *StockLevelResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLevelRepo().FindByPair(ctx, storeID, variantID)
		if err != nil {
			if shared.IsDomainErrorWithCode(err, "NOT_FOUND") {
				empty, nerr := inventory.NewStockLevel(variantID, storeID, inventory.DefaultMinStock)
				if nerr != nil {
					return nerr
				}
				r := ToStockLevelResponse(empty)
				response = &r
				return nil
			}
			return err
		}
		r := ToStockLevelResponse(level)
		response = &r
		return nil
	})
	return response, err
}

// ListStockLevels retrieves the stock levels of a store with pagination
func (s *ReceivingService) ListStockLevels(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockLevelResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	var page *shared.Paginated[StockLevelResponse]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		levels, total, err := repos.StockLevelRepo().FindByStore(ctx, storeID, filter)
		if err != nil {
			return err
		}
		responses := make([]StockLevelResponse, 0, len(levels))
		for i := range levels {
			responses = append(responses, ToStockLevelResponse(&levels[i]))
		}
		p := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
		page = &p
		return nil
	})
	return page, err
}

// ListBelowMinimum retrieves the stock levels at or below their alert threshold
func (s *ReceivingService) ListBelowMinimum(ctx context.Context, storeID uuid.UUID) ([]StockLevelResponse, error) {
	var responses []StockLevelResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		levels, err := repos.StockLevelRepo().FindBelowMinimum(ctx, storeID)
		if err != nil {
			return err
		}
		responses = make([]StockLevelResponse, 0, len(levels))
		for i := range levels {
			responses = append(responses, ToStockLevelResponse(&levels[i]))
		}
		return nil
	})
	return responses, err
}

// SetMinStock changes the low-stock alert threshold for a variant at a store
func (s *ReceivingService) SetMinStock(ctx context.Context, storeID, variantID uuid.UUID, minStock int64) (*StockLevelResponse, error) {
	var response *StockLevelResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLevelRepo().GetOrCreate(ctx, storeID, variantID, inventory.DefaultMinStock)
		if err != nil {
			return err
		}
		if err := level.SetMinStock(minStock); err != nil {
			return err
		}
		if err := repos.StockLevelRepo().Save(ctx, level); err != nil {
			return err
		}
		r := ToStockLevelResponse(level)
		response = &r
		return nil
	})
	return response, err
}
