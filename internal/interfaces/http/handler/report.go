package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildium/backend/internal/application/report"
)

// ReportHandler handles revenue report HTTP requests
type ReportHandler struct {
	BaseHandler
	reports *report.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RevenueReportRequest holds revenue report query parameters
type RevenueReportRequest struct {
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Granularity string `form:"granularity" binding:"omitempty,oneof=month week"`
}

// AnalyticsRequest holds ledger analytics query parameters
type AnalyticsRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func parseReportRange(from, to string) (time.Time, time.Time) {
	var f, t time.Time
	if from != "" {
		f, _ = time.Parse(dateLayout, from)
	}
	if to != "" {
		parsed, _ := time.Parse(dateLayout, to)
		// Inclusive upper bound covering the whole day
		t = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return f, t
}

// Revenue godoc
// @Summary      Revenue report
// @Description  Aggregates issued invoices per calendar month or ISO week over a date range
// @Tags         reports
// @Produce      json
// @Param        from query string false "Range start (YYYY-MM-DD)"
// @Param        to query string false "Range end (YYYY-MM-DD)"
// @Param        granularity query string false "Bucket size" Enums(month, week)
// @Success      200 {object} dto.Response{data=report.RevenueReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/revenue [get]
func (h *ReportHandler) Revenue(c *gin.Context) {
	var req RevenueReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	from, to := parseReportRange(req.From, req.To)
	result, err := h.reports.Revenue(c.Request.Context(), from, to, report.Granularity(req.Granularity))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Analytics godoc
// @Summary      Ledger analytics
// @Description  Status distribution, average amount and top counterparties over a date range
// @Tags         reports
// @Produce      json
// @Param        from query string false "Range start (YYYY-MM-DD)"
// @Param        to query string false "Range end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=report.Analytics}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/analytics [get]
func (h *ReportHandler) Analytics(c *gin.Context) {
	var req AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	from, to := parseReportRange(req.From, req.To)
	result, err := h.reports.Statistics(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
