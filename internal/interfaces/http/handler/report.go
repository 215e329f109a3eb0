package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reportapp "github.com/scentpos/backend/internal/application/report"
	"github.com/scentpos/backend/internal/domain/report"
	"github.com/scentpos/backend/internal/interfaces/http/dto"
)

// ReportHandler handles financial report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/top-products", h.TopProducts)
		reports.GET("/trend", h.Trend)
	}
}

func (h *ReportHandler) bindQuery(c *gin.Context) (reportapp.SummaryQuery, bool) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return reportapp.SummaryQuery{}, false
	}
	from, err := parseDate(req.From)
	if err != nil {
		h.BadRequest(c, "invalid from date")
		return reportapp.SummaryQuery{}, false
	}
	to, err := parseDate(req.To)
	if err != nil {
		h.BadRequest(c, "invalid to date")
		return reportapp.SummaryQuery{}, false
	}
	query := reportapp.SummaryQuery{From: from, To: to}
	if req.StoreID != "" {
		id, err := uuid.Parse(req.StoreID)
		if err != nil {
			h.BadRequest(c, "invalid store_id")
			return reportapp.SummaryQuery{}, false
		}
		query.StoreID = &id
	}
	return query, true
}

// Summary returns the financial summary for a period
func (h *ReportHandler) Summary(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	resp, err := h.reportService.Summary(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TopProducts returns the best-sellers ranking for a period
func (h *ReportHandler) TopProducts(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	limit := reportapp.DefaultTopProductsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}
	resp, err := h.reportService.TopProducts(c.Request.Context(), query, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Trend returns the time-bucketed revenue and profit trend for a period
func (h *ReportHandler) Trend(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	bucket := report.TrendBucket(c.DefaultQuery("bucket", string(report.BucketDay)))
	if !bucket.IsValid() {
		h.BadRequest(c, "bucket must be one of day, week, month, year")
		return
	}
	resp, err := h.reportService.Trend(c.Request.Context(), query, bucket)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
