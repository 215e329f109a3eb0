package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation assigns part of a requested sale quantity to one batch, with
// the batch's cost captured at planning time. One allocation becomes one
// order line when the plan is applied.
type Allocation struct {
	BatchID  uuid.UUID
	Quantity int64
	UnitCost decimal.Decimal
}

// AllocationPlan is the result of planning a sale quantity against the
// open batches of a (variant, store) pair.
type AllocationPlan struct {
	VariantID   uuid.UUID
	Requested   int64
	Allocated   int64
	Shortfall   int64
	Allocations []Allocation
}

// Feasible returns true if the full requested quantity was covered
func (p AllocationPlan) Feasible() bool {
	return p.Shortfall == 0
}

// TotalCost returns the wholesale cost of the planned allocations
func (p AllocationPlan) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.UnitCost.Mul(decimal.NewFromInt(a.Quantity)))
	}
	return total
}

// PlanFIFO plans a sale of requested units against the given batches,
// oldest receipt first. FIFO order is by receipt time with the store-scoped
// arrival sequence as tie-break, so concurrent receipts with identical
// timestamps still allocate deterministically. The planner mutates nothing;
// the caller applies the emitted draws inside its own transaction over the
// same batch snapshot.
func PlanFIFO(variantID uuid.UUID, batches []Batch, requested int64) AllocationPlan {
	plan := AllocationPlan{
		VariantID:   variantID,
		Requested:   requested,
		Shortfall:   requested,
		Allocations: make([]Allocation, 0),
	}
	if requested <= 0 {
		plan.Shortfall = 0
		return plan
	}

	ordered := make([]Batch, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ReceivedAt.Equal(ordered[j].ReceivedAt) {
			return ordered[i].ArrivalSeq < ordered[j].ArrivalSeq
		}
		return ordered[i].ReceivedAt.Before(ordered[j].ReceivedAt)
	})

	remaining := requested
	for _, b := range ordered {
		if remaining == 0 {
			break
		}
		if b.RemainingQty <= 0 {
			continue
		}
		take := remaining
		if b.RemainingQty < take {
			take = b.RemainingQty
		}
		plan.Allocations = append(plan.Allocations, Allocation{
			BatchID:  b.ID,
			Quantity: take,
			UnitCost: b.UnitCost,
		})
		remaining -= take
	}

	plan.Allocated = requested - remaining
	plan.Shortfall = remaining
	return plan
}
