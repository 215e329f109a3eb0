package handler

import (
	"github.com/gin-gonic/gin"
	salesapp "github.com/scentpos/backend/internal/application/sales"
	"github.com/scentpos/backend/internal/domain/sales"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/scentpos/backend/internal/infrastructure/telemetry"
	"github.com/scentpos/backend/internal/interfaces/http/dto"
)

// CheckoutHandler handles checkout and order API endpoints
type CheckoutHandler struct {
	BaseHandler
	settlementService *salesapp.SettlementService
	metrics           *telemetry.POSMetrics
}

// NewCheckoutHandler creates a new CheckoutHandler. metrics may be nil.
func NewCheckoutHandler(settlementService *salesapp.SettlementService, metrics *telemetry.POSMetrics) *CheckoutHandler {
	return &CheckoutHandler{
		settlementService: settlementService,
		metrics:           metrics,
	}
}

// RegisterRoutes registers checkout and order routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout", h.Checkout)
	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/by-number/:number", h.GetOrderByNumber)
	}
}

// Checkout settles a cart into an order, or places it on hold
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req salesapp.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	resp, err := h.settlementService.Checkout(ctx, req)
	if err != nil {
		if h.metrics != nil && shared.IsDomainErrorWithCode(err, "INSUFFICIENT_STOCK") {
			h.metrics.RecordInsufficientStock(ctx, req.StoreID.String())
		}
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		if resp.Status == string(sales.OrderStatusOnHold) {
			h.metrics.RecordOrderHeld(ctx, resp.StoreID.String())
		} else {
			var units int64
			for _, line := range resp.Lines {
				units += line.Quantity
			}
			h.metrics.RecordOrderSettled(ctx, resp.StoreID.String(), resp.PaymentMethod, resp.Total, units)
		}
	}
	h.Created(c, resp)
}

// ListOrders lists orders with filters and pagination
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.Normalize()

	storeID, ok := parseUUIDQuery(c, "store_id")
	if !ok {
		h.BadRequest(c, "invalid store_id")
		return
	}
	cashierID, ok := parseUUIDQuery(c, "cashier_id")
	if !ok {
		h.BadRequest(c, "invalid cashier_id")
		return
	}
	dateFrom, ok := parseDateQuery(c, "from")
	if !ok {
		h.BadRequest(c, "invalid from date")
		return
	}
	dateTo, ok := parseDateQuery(c, "to")
	if !ok {
		h.BadRequest(c, "invalid to date")
		return
	}
	query := salesapp.ListOrdersQuery{
		StoreID:   storeID,
		CashierID: cashierID,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Page:      listReq.Page,
		PageSize:  listReq.PageSize,
	}
	if status := c.Query("status"); status != "" {
		if !sales.OrderStatus(status).IsValid() {
			h.BadRequest(c, "invalid status")
			return
		}
		query.Status = &status
	}

	resp, err := h.settlementService.ListOrders(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// GetOrder returns one order with its lines
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid order ID")
		return
	}
	resp, err := h.settlementService.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetOrderByNumber returns one order looked up by its order number
func (h *CheckoutHandler) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	resp, err := h.settlementService.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
