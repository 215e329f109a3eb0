package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/scentpos/backend/internal/application/finance"
	"github.com/scentpos/backend/internal/interfaces/http/dto"
)

// ExpenseHandler handles expense API endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// RegisterRoutes registers expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.Create)
		expenses.GET("", h.List)
		expenses.GET("/:id", h.Get)
		expenses.PUT("/:id", h.Update)
		expenses.DELETE("/:id", h.Delete)
	}
}

// Create records an operating expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req financeapp.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	resp, err := h.expenseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists expenses with filters and pagination
func (h *ExpenseHandler) List(c *gin.Context) {
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
	query := financeapp.ListExpensesQuery{
		StoreID:  storeID,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if category := c.Query("category"); category != "" {
		query.Category = &category
	}

	resp, err := h.expenseService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get returns one expense
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid expense ID")
		return
	}
	resp, err := h.expenseService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update revises a recorded expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid expense ID")
		return
	}
	var req financeapp.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	resp, err := h.expenseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a recorded expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid expense ID")
		return
	}
	if err := h.expenseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
