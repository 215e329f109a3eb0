package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/scentpos/backend/internal/application/inventory"
	"github.com/scentpos/backend/internal/infrastructure/telemetry"
	"github.com/scentpos/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles batch receiving and stock level API endpoints
type InventoryHandler struct {
	BaseHandler
	receivingService *inventoryapp.ReceivingService
	metrics          *telemetry.POSMetrics
}

// NewInventoryHandler creates a new InventoryHandler. metrics may be nil.
func NewInventoryHandler(receivingService *inventoryapp.ReceivingService, metrics *telemetry.POSMetrics) *InventoryHandler {
	return &InventoryHandler{
		receivingService: receivingService,
		metrics:          metrics,
	}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.POST("/batches", h.ReceiveBatch)
		inventory.GET("/batches", h.ListBatches)
		inventory.GET("/batches/:id", h.GetBatch)
		inventory.PUT("/batches/:id", h.UpdateBatch)
		inventory.DELETE("/batches/:id", h.DeleteBatch)

		inventory.GET("/stock-levels", h.ListStockLevels)
		inventory.GET("/stock-levels/alerts", h.ListBelowMinimum)
		inventory.GET("/stock-levels/current", h.GetStock)
		inventory.PUT("/stock-levels/min-stock", h.SetMinStock)
	}
}

func (h *InventoryHandler) recordBatchReceived(ctx context.Context, storeID uuid.UUID, units int64) {
	if h.metrics != nil {
		h.metrics.RecordBatchReceived(ctx, storeID.String(), units)
	}
}

// ReceiveBatch records a stock delivery
func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	var req inventoryapp.ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	resp, err := h.receivingService.ReceiveBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.recordBatchReceived(c.Request.Context(), resp.StoreID, resp.Quantity)
	h.Created(c, resp)
}

// ListBatches lists batches, optionally scoped to a store and variant
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	storeID, ok := parseUUIDQuery(c, "store_id")
	if !ok {
		h.BadRequest(c, "invalid store_id")
		return
	}
	variantID, ok := parseUUIDQuery(c, "variant_id")
	if !ok {
		h.BadRequest(c, "invalid variant_id")
		return
	}
	store, variant := uuid.Nil, uuid.Nil
	if storeID != nil {
		store = *storeID
	}
	if variantID != nil {
		variant = *variantID
	}
	resp, err := h.receivingService.ListBatches(c.Request.Context(), store, variant, toFilter(listReq))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetBatch returns one batch
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid batch ID")
		return
	}
	resp, err := h.receivingService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateBatch corrects a recorded delivery
func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid batch ID")
		return
	}
	var req inventoryapp.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	resp, err := h.receivingService.UpdateBatch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteBatch removes an unreferenced batch
func (h *InventoryHandler) DeleteBatch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid batch ID")
		return
	}
	if err := h.receivingService.DeleteBatch(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListStockLevels lists stock levels for a store
func (h *InventoryHandler) ListStockLevels(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, "store_id query parameter is required")
		return
	}
	resp, err := h.receivingService.ListStockLevels(c.Request.Context(), storeID, toFilter(listReq))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// ListBelowMinimum lists variants at or below their alert threshold
func (h *InventoryHandler) ListBelowMinimum(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, "store_id query parameter is required")
		return
	}
	resp, err := h.receivingService.ListBelowMinimum(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetStock returns the stock level of one variant at one store
func (h *InventoryHandler) GetStock(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, "store_id query parameter is required")
		return
	}
	variantID, err := uuid.Parse(c.Query("variant_id"))
	if err != nil {
		h.BadRequest(c, "variant_id query parameter is required")
		return
	}
	resp, err := h.receivingService.GetStock(c.Request.Context(), storeID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetMinStock changes the low-stock alert threshold
func (h *InventoryHandler) SetMinStock(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, "store_id query parameter is required")
		return
	}
	variantID, err := uuid.Parse(c.Query("variant_id"))
	if err != nil {
		h.BadRequest(c, "variant_id query parameter is required")
		return
	}
	var req inventoryapp.SetMinStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	resp, err := h.receivingService.SetMinStock(c.Request.Context(), storeID, variantID, req.MinStock)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
