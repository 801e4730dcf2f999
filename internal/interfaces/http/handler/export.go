package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildium/backend/internal/application/export"
	"github.com/buildium/backend/internal/interfaces/http/dto"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// ExportHandler handles spreadsheet export HTTP requests
type ExportHandler struct {
	BaseHandler
	exports *export.Service
}

// NewExportHandler creates a new export handler
func NewExportHandler(exports *export.Service) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportRequest holds export query parameters. The list filters are
// shared with the invoice list endpoint.
type ExportRequest struct {
	ListInvoicesRequest
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// Export godoc
// @Summary      Export the invoice ledger
// @Description  Produces an XLSX or CSV file of invoices matching the filter
// @Tags         invoices
// @Produce      application/octet-stream
// @Param        format query string false "Export format" Enums(csv, xlsx) default(xlsx)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	req := ExportRequest{
		ListInvoicesRequest: ListInvoicesRequest{ListRequest: dto.DefaultListRequest()},
		Format:              "xlsx",
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if req.Format == "" {
		req.Format = "xlsx"
	}

	filter := req.toFilter()
	stamp := time.Now().Format("20060102")

	switch req.Format {
	case "csv":
		data, err := h.exports.CSVExport(c.Request.Context(), filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "factures_"+stamp+".csv"))
		c.Data(http.StatusOK, contentTypeCSV, data)
	default:
		data, err := h.exports.ExcelExport(c.Request.Context(), filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "factures_"+stamp+".xlsx"))
		c.Data(http.StatusOK, contentTypeXLSX, data)
	}
}
