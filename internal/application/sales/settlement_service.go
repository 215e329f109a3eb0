package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/catalog"
	"github.com/scentpos/backend/internal/domain/inventory"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/domain/store"
	"github.com/shopspring/decimal"
)

// orderNumberAttempts bounds retries on order number collisions. Collisions
// require two orders in the same second drawing the same random suffix.
const orderNumberAttempts = 3

// SettlementService turns carts into orders. A settlement locks the stock
// rows it touches, plans a FIFO allocation across open batches, draws the
// planned quantities, decrements the stock aggregate and persists the order
// with its lines, all in one transaction. Holds skip allocation entirely.
type SettlementService struct {
	txScope     TransactionScope
	variantRepo catalog.VariantRepository
	storeRepo   store.Repository
	now         func() time.Time
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	txScope TransactionScope,
	variantRepo catalog.VariantRepository,
	storeRepo store.Repository,
) *SettlementService {
	return &SettlementService{
		txScope:     txScope,
		variantRepo: variantRepo,
		storeRepo:   storeRepo,
		now:         time.Now,
	}
}

// cartItem is a merged, price-resolved cart line
type cartItem struct {
	variant   catalog.Variant
	quantity  int64
	unitPrice decimal.Decimal
}

// Checkout settles or holds a cart depending on req.Hold
func (s *SettlementService) Checkout(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	shop, err := s.storeRepo.FindByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveCart(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	lineAmounts := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		lineAmounts = append(lineAmounts, item.unitPrice.Mul(decimal.NewFromInt(item.quantity)))
	}
	totals, err := sales.ComputeTotals(lineAmounts, req.Discount, shop.TaxRate)
	if err != nil {
		return nil, err
	}

	status := sales.OrderStatusCompleted
	if req.Hold {
		status = sales.OrderStatusOnHold
	}

	var order *sales.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order, err = s.buildOrder(req, totals, shop.TaxRate, status)
		if err != nil {
			return nil, err
		}

		if req.Hold {
			err = s.holdOrder(ctx, order, items)
		} else {
			err = s.settleOrder(ctx, order, items)
		}
		if err == nil {
			break
		}
		if !shared.IsDomainErrorWithCode(err, "ALREADY_EXISTS") {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// resolveCart resolves line prices (explicit override or variant retail) and
// merges lines with the same variant and price into one item
func (s *SettlementService) resolveCart(ctx context.Context, lines []CartLine) ([]cartItem, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cart must contain at least one line")
	}

	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		if line.UnitPrice != nil && line.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_PRICE", "Line price must be positive")
		}
		if !seen[line.VariantID] {
			seen[line.VariantID] = true
			ids = append(ids, line.VariantID)
		}
	}

	variants, err := s.variantRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	type itemKey struct {
		variantID uuid.UUID
		price     string
	}
	index := make(map[itemKey]int)
	items := make([]cartItem, 0, len(lines))
	for _, line := range lines {
		v, ok := byID[line.VariantID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Variant %s not found", line.VariantID))
		}
		price := v.RetailPrice
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		key := itemKey{variantID: v.ID, price: price.String()}
		if i, merged := index[key]; merged {
			items[i].quantity += line.Quantity
			continue
		}
		index[key] = len(items)
		items = append(items, cartItem{variant: v, quantity: line.Quantity, unitPrice: price})
	}

	// Lock stock rows in a stable order so two concurrent checkouts over
	// overlapping variants cannot deadlock.
	sort.Slice(items, func(i, j int) bool {
		if items[i].variant.ID != items[j].variant.ID {
			return items[i].variant.ID.String() < items[j].variant.ID.String()
		}
		return items[i].unitPrice.LessThan(items[j].unitPrice)
	})
	return items, nil
}

func (s *SettlementService) buildOrder(req CheckoutRequest, totals sales.Totals, taxRate decimal.Decimal, status sales.OrderStatus) (*sales.Order, error) {
	order, err := sales.NewOrder(
		sales.NewOrderNumber(s.now()),
		req.StoreID,
		req.CashierID,
		totals,
		taxRate,
		sales.PaymentMethod(req.PaymentMethod),
		status,
	)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		order.SetCustomer(*req.CustomerID)
	}
	order.Notes = req.Notes
	return order, nil
}

// settleOrder allocates stock and persists the order atomically
func (s *SettlementService) settleOrder(ctx context.Context, order *sales.Order, items []cartItem) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, item := range items {
			if err := s.allocateItem(ctx, repos, order, item); err != nil {
				return err
			}
		}
		return repos.OrderRepo().Create(ctx, order)
	})
}

// allocateItem plans and applies the FIFO draw for one cart item
func (s *SettlementService) allocateItem(ctx context.Context, repos TransactionalRepositories, order *sales.Order, item cartItem) error {
	variantID := item.variant.ID

	level, err := repos.StockLevelRepo().FindByPairForUpdate(ctx, order.StoreID, variantID)
	if err != nil {
		if shared.IsDomainErrorWithCode(err, "NOT_FOUND") {
			return insufficientStock(item, 0)
		}
		return err
	}

	batches, err := repos.BatchRepo().FindOpenForAllocation(ctx, order.StoreID, variantID)
	if err != nil {
		return err
	}

	plan := inventory.PlanFIFO(variantID, batches, item.quantity)
	if !plan.Feasible() {
		return insufficientStock(item, plan.Allocated)
	}

	for _, alloc := range plan.Allocations {
		batch := findBatch(batches, alloc.BatchID)
		if batch == nil {
			return shared.NewDomainError("INTERNAL", "Allocation references an unknown batch")
		}
		if err := batch.Draw(alloc.Quantity); err != nil {
			return err
		}
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		if err := order.AttachLine(variantID, alloc.BatchID, alloc.Quantity, item.unitPrice, alloc.UnitCost); err != nil {
			return err
		}
	}

	if err := level.Decrease(item.quantity); err != nil {
		return err
	}
	return repos.StockLevelRepo().Save(ctx, level)
}

// holdOrder persists an on-hold order without touching stock
func (s *SettlementService) holdOrder(ctx context.Context, order *sales.Order, items []cartItem) error {
	for _, item := range items {
		if err := order.AttachPendingLine(item.variant.ID, item.quantity, item.unitPrice); err != nil {
			return err
		}
	}
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.OrderRepo().Create(ctx, order)
	})
}

func insufficientStock(item cartItem, available int64) error {
	return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf(
		"Insufficient stock for %s (%s): requested %d, available %d",
		item.variant.SKU, item.variant.Label, item.quantity, available,
	))
}

func findBatch(batches []inventory.Batch, id uuid.UUID) *inventory.Batch {
	for i := range batches {
		if batches[i].ID == id {
			return &batches[i]
		}
	}
	return nil
}

// GetOrder retrieves an order by ID
func (s *SettlementService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var response *OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		r := ToOrderResponse(order)
		response = &r
		return nil
	})
	return response, err
}

// GetOrderByNumber retrieves an order by its human-readable number
func (s *SettlementService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	var response *OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return err
		}
		r := ToOrderResponse(order)
		response = &r
		return nil
	})
	return response, err
}

// ListOrders retrieves orders matching the query, newest first
func (s *SettlementService) ListOrders(ctx context.Context, query ListOrdersQuery) (*shared.Paginated[OrderResponse], error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	filter := sales.OrderFilter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		StoreID:   query.StoreID,
		CashierID: query.CashierID,
		DateFrom:  query.DateFrom,
		DateTo:    query.DateTo,
	}
	if query.Status != nil {
		status := sales.OrderStatus(*query.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown order status filter")
		}
		filter.Status = &status
	}

	var page *shared.Paginated[OrderResponse]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		result, err := repos.OrderRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		responses := make([]OrderResponse, 0, len(result.Items))
		for i := range result.Items {
			responses = append(responses, ToOrderResponse(&result.Items[i]))
		}
		p := shared.NewPaginated(responses, result.Total, query.Page, query.PageSize)
		page = &p
		return nil
	})
	return page, err
}
