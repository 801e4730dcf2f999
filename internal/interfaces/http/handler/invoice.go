package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinvoice "github.com/buildium/backend/internal/application/invoice"
	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	BaseHandler
	issuance *appinvoice.IssuanceService
	queries  *appinvoice.QueryService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(issuance *appinvoice.IssuanceService, queries *appinvoice.QueryService) *InvoiceHandler {
	return &InvoiceHandler{
		issuance: issuance,
		queries:  queries,
	}
}

// Issue godoc
// @Summary      Issue an invoice
// @Description  Computes totals, allocates the next invoice number and renders the PDF document
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body IssueInvoiceRequest true "Invoice data"
// @Success      201 {object} dto.Response{data=InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var issueDate time.Time
	if req.IssueDate != "" {
		var err error
		issueDate, err = time.Parse(dateLayout, req.IssueDate)
		if err != nil {
			h.BadRequest(c, "Invalid issue date")
			return
		}
	}

	lines := make([]invoice.LineItem, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = l.toLineItem()
	}

	inv, err := h.issuance.Issue(c.Request.Context(), appinvoice.IssueRequest{
		IssueDate:    issueDate,
		Counterparty: req.Counterparty.toParty(),
		Lines:        lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(inv))
}

// List godoc
// @Summary      List invoices
// @Description  Lists invoices with filtering, sorting and pagination
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response{data=[]InvoiceSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	req := ListInvoicesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	invoices, total, err := h.queries.List(c.Request.Context(), req.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]InvoiceSummaryResponse, len(invoices))
	for i := range invoices {
		responses[i] = toInvoiceSummaryResponse(&invoices[i])
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// Get godoc
// @Summary      Get an invoice
// @Description  Returns one invoice with its lines by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.queries.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(inv))
}

// GetByNumber godoc
// @Summary      Get an invoice by number
// @Tags         invoices
// @Produce      json
// @Param        number path string true "Invoice number"
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/number/{number} [get]
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	var req NumberRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice number")
		return
	}

	inv, err := h.queries.GetByNumber(c.Request.Context(), req.Number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(inv))
}

// UpdateStatus godoc
// @Summary      Update invoice status
// @Description  Transitions the settlement status of an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.queries.ChangeStatus(c.Request.Context(), id, invoice.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(inv))
}

// Artifact godoc
// @Summary      Download the invoice PDF
// @Description  Serves the stored PDF document, regenerating it from structured data when missing
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) Artifact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	data, filename, err := h.queries.Artifact(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// Statistics godoc
// @Summary      Invoice statistics
// @Description  Aggregates counts per status and total revenue
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response{data=invoice.Statistics}
// @Router       /invoices/statistics [get]
func (h *InvoiceHandler) Statistics(c *gin.Context) {
	stats, err := h.queries.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
